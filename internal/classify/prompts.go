package classify

// analysisPrompt frames the disposition decision. The contract it states is
// load-bearing: every difference must land in exactly one of the three lists,
// and the response must be bare JSON in the fixed schema.
const analysisPrompt = `You are analyzing UI differences detected between a baseline and an updated screenshot of the same webpage, against the existing backlog of change tickets. Your job is to decide, for every difference, whether it is an intentional change that completes a ticket, a partially implemented ticket, or an unexpected regression.

For each difference, determine:
1. Does it match an existing ticket? (exact or close match on the described change)
2. If it matches, is the implementation correct according to the ticket description?
3. If nothing matches, it is a new issue.

Classification rules:
- resolved_tickets: the ticket's change is now correctly and completely implemented. Give the ticket id and a justification.
- pending_tickets: the ticket's change is present but wrong or incomplete (wrong position, wrong text, missing detail). Give the ticket id and the specific mismatch.
- new_tickets: the difference matches no ticket. Give a title, a description, and a severity (high, medium, or low).

Every difference listed below must appear in exactly one of the three lists. Do not drop any difference and do not place one difference in more than one list. A ticket id may only be used if it appears in the ticket list below.

Return ONLY a JSON object in exactly this format, with no surrounding prose:
{
  "resolved_tickets": [{"ticket_id": "string", "reason": "string"}],
  "pending_tickets": [{"ticket_id": "string", "reason": "string"}],
  "new_tickets": [{"title": "string", "description": "string", "severity": "high|medium|low", "element_type": "string", "location": "string"}]
}

If a list has no entries, return it as an empty array.`
