package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/extract_v1.txt
	extractV1 string
	//go:embed prompts/summary_v1.txt
	summaryV1 string
	//go:embed prompts/research_v1.txt
	researchV1 string
)

// ExtractPrompt returns the system and user messages for fact extraction.
func ExtractPrompt(documentText string) (system, user string) {
	return splitPrompt(extractV1, documentText)
}

// SummaryPrompt returns the system and user messages for document summary.
func SummaryPrompt(documentText string) (system, user string) {
	return splitPrompt(summaryV1, documentText)
}

// ResearchPrompt returns the system and user messages for condensing scraped
// web content about an entity.
func ResearchPrompt(entityName, pageContent string) (system, user string) {
	system, user = splitPrompt(researchV1, pageContent)
	user = strings.ReplaceAll(user, "{entity}", entityName)
	return system, user
}

// Templates hold a system section and a user section separated by a
// "---USER---" marker line; {document} marks where the text goes.
func splitPrompt(template, documentText string) (string, string) {
	system, user, found := strings.Cut(template, "---USER---")
	if !found {
		user = system
		system = ""
	}
	user = strings.ReplaceAll(user, "{document}", documentText)
	return strings.TrimSpace(system), strings.TrimSpace(user)
}
