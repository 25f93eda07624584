package roadmap

import "fmt"

// generationPrompt asks the model to select and sequence subjects from the
// catalog into a prerequisite roadmap for one occupation. The reply must be
// a bare JSON document; the interpreter's fallback extraction exists because
// this instruction is not always honored.
const generationPrompt = `You are a curriculum planning engine for a university syllabus.
Given a target occupation and the available subject catalog, select the subjects most relevant to that occupation and sequence them into a study roadmap.

TARGET OCCUPATION: %s

NODE TYPES (use exactly these values):
- foundation   : entry-level subject the rest of the plan builds on
- core         : mandatory subject for this occupation
- specialized  : advanced subject specific to this occupation
- elective     : optional supporting subject

Return a JSON object with exactly these fields:
  "title"         : string, short name for the roadmap
  "description"   : string, one or two sentences
  "occupation"    : string, the target occupation as given
  "nodes"         : array of {"id": string, "name": string, "type": string, "completed": false, "connects": [string], "credits": number, "year": number, "semester": number, "relevance_score": number}
  "total_credits" : number, sum of the selected subjects' credits
  "reasoning"     : string, brief justification of the selection

Rules:
- Every node id MUST be the id of a subject from the catalog below.
- "connects" lists the ids of later subjects this subject leads into; only reference ids that are also in "nodes".
- Keep each subject's credits, year, and semester exactly as given in the catalog.
- "relevance_score" is a float between 0.0 and 1.0 for this occupation.
- Do NOT include any text outside the JSON object. No prose, no code fences.

SUBJECT CATALOG (JSON):
%s`

// enrichmentPrompt asks for a relevance score and justification for a single
// subject, either for one named occupation or for every occupation the model
// finds pertinent.
const enrichmentPrompt = `You are a career relevance rater for university subjects.
Given one subject from a syllabus catalog, estimate how relevant it is to %s.

Return a JSON object with exactly these fields:
  "career_relevance"        : object mapping occupation key to a float in [0.0, 1.0]
  "career_relevance_reason" : object mapping occupation key to a one-sentence justification

Rules:
- Occupation keys must be lowercase with spaces replaced by underscores (e.g. "software_engineer").
- Scores reflect how directly the subject's content prepares a student for the occupation.
- Do NOT include any text outside the JSON object. No prose, no code fences.

SUBJECT (JSON):
%s`

// GenerationPrompt builds the roadmap-generation prompt from the occupation
// and the serialized subject catalog.
func GenerationPrompt(occupation string, subjectsJSON []byte) string {
	return fmt.Sprintf(generationPrompt, occupation, subjectsJSON)
}

// EnrichmentPrompt builds the single-subject relevance prompt. An empty
// occupation asks the model to rate every occupation it finds pertinent.
func EnrichmentPrompt(subjectJSON []byte, occupation string) string {
	scope := "every occupation for which it is clearly relevant"
	if occupation != "" {
		scope = fmt.Sprintf("the occupation %q", occupation)
	}
	return fmt.Sprintf(enrichmentPrompt, scope, subjectJSON)
}
