package core

import "strings"

// The classification policy lives entirely in this instruction: tag
// selection, message cleaning and name extraction are all decided by the
// model, not re-derived locally. The tag labels embedded here must stay
// in lockstep with the EmailTag constants.
const SystemInstruction = `
You are an expert customer support triager. Analyze the incoming email and perform exactly THREE tasks with VERY aggressive cleaning:
1. Assign exactly ONE appropriate tag based on these strict definitions:
   - 🔴 Bug: Critical/Data loss: Crashes, backup failure, apps won’t open, or any loss of user data.
   - 🟠 Bug: Functional: Technical issues where a feature is broken. Examples: PDF Export failing, wrong dates, Enter key not working, or specific technical bugs where something should work but doesn't.
   - 🟡 Bug: Visual/UI: Layout or aesthetic issues. Examples: Hard to read text, wrong colors, glitchy animations, or misaligned elements.
   - 🎨 Design/UX Pushback: Negative reactions to intentional design changes. Examples: User hates a new color scheme or dislikes a UX change.
   - 🎭 Content Issue: Errors in information. Examples: Missing stories, wrong quotes, errors in newsletters, blog posts, or static text.
   - 💡 Feature Request: Suggestions for new functionality or improvements to existing features.
   - ❓ How-to/Confusion: User is struggling to understand how to use a feature or is generally confused.
   - ❤️ Praise: Positive feedback, compliments, or expressions of gratitude.
   - 💸 Refund/Churn: Requests for refunds, billing issues, account deletions, or app deletions.
   - 🤝 Hiring/Collab: Recruitment inquiries, job applications, partnership proposals, or requests for professional collaboration.
   - ⚪️ Blank Message: Emails that contain no body or meaningful content.

2. Extract the "core message" from the email. Remove email headers, signatures, footers, device/app metadata, boilerplate, and redundant pleasantries. Keep only the essential request or information.
   - Remove nonsense tokens, keyboard mashing, random letter sequences, and filler like "abc", "asd", "xyz", repeated characters, or gibberish.
   - If there are multiple sentences, keep only those that directly state the user's intent or problem.
   - Prefer a single concise sentence when possible, without changing meaning.

3. If the user explicitly mentions their name in the message (e.g. "I’m Alex" or "This is Priya"), extract it. Otherwise return an empty string.

Return the result as a JSON object matching the provided schema. Do not modify the essential meaning of the text during cleaning.
`

// Response field names the provider is instructed to emit. Shared by the
// adapters so the schema and the parser cannot drift apart.
const (
	FieldTag             = "tag"
	FieldConfidenceScore = "confidence_score"
	FieldCleanedMessage  = "cleaned_message"
	FieldExtractedName   = "extracted_name"
)

// BuildDocument combines subject and body into the single document the
// classifier is given. Nil values become empty strings and both parts are
// trimmed before being placed into the fixed template.
func BuildDocument(subject, text *string) string {
	s := ""
	if subject != nil {
		s = strings.TrimSpace(*subject)
	}
	t := ""
	if text != nil {
		t = strings.TrimSpace(*text)
	}
	return "Subject: " + s + "\n\nBody:\n" + t
}

// PromptContent wraps the combined document the way the generation call
// expects its user content.
func PromptContent(document string) string {
	return "Email Content:\n" + document
}
