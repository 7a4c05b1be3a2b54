package ollama

func buildSigPrompt(rawText string) string {
	const maxSnippet = 1000
	snippet := rawText
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}

	return `You are a pharmacy sig interpreter.
Return a strict JSON object with keys:
dose_amount (positive number), doses_per_day (number, 0 means as-needed),
unit (one of: tablet, capsule, pill, mL, L, unit, actuation),
confidence (number from 0 to 1).
Optional keys, only when clearly present in the text:
dosage_form (tablet | capsule | liquid | insulin-injectable | inhaler | other),
concentration (object: amount, amount_unit, volume, volume_unit),
insulin_strength (units per mL), inhaler_capacity (actuations per canister).
No markdown, no extra keys.

Instruction:
` + snippet
}

func buildRewritePrompt(rawText string) string {
	const maxSnippet = 1000
	snippet := rawText
	if len(snippet) > maxSnippet {
		snippet = snippet[:maxSnippet]
	}

	return `Restate the following prescription dosing instruction as one short
canonical sentence of the form "take <dose> <unit> <frequency>".
Fix typos and abbreviations. Reply with the sentence only.
If the text is not a dosing instruction, reply exactly: no change

Instruction:
` + snippet
}
