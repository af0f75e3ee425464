package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailTagValid(t *testing.T) {
	assert.Len(t, AllTags(), 11)
	for _, tag := range AllTags() {
		assert.True(t, tag.Valid(), string(tag))
	}

	assert.False(t, EmailTag("").Valid())
	assert.False(t, EmailTag("Praise").Valid())
	assert.False(t, EmailTag("🔥 Urgent").Valid())
	// Close but reworded labels are not valid either.
	assert.False(t, EmailTag("❤️ praise").Valid())
}

func TestValidateClassification(t *testing.T) {
	valid := &Classification{Tag: TagPraise, ConfidenceScore: 0.92}
	assert.NoError(t, ValidateClassification(valid))

	// Boundary scores are inside the contract.
	assert.NoError(t, ValidateClassification(&Classification{Tag: TagBlank, ConfidenceScore: 0}))
	assert.NoError(t, ValidateClassification(&Classification{Tag: TagBlank, ConfidenceScore: 1}))

	err := ValidateClassification(&Classification{Tag: "🔥 Urgent", ConfidenceScore: 0.5})
	assert.ErrorIs(t, err, ErrClassifierProvider)

	err = ValidateClassification(&Classification{Tag: TagPraise, ConfidenceScore: 1.2})
	assert.ErrorIs(t, err, ErrClassifierProvider)

	err = ValidateClassification(&Classification{Tag: TagPraise, ConfidenceScore: -0.1})
	assert.ErrorIs(t, err, ErrClassifierProvider)
}

func TestSystemInstructionCoversEveryTag(t *testing.T) {
	for _, tag := range AllTags() {
		assert.True(t, strings.Contains(SystemInstruction, string(tag)),
			"instruction missing tag %q", string(tag))
	}
}

func TestBuildDocument(t *testing.T) {
	subject := "  Billing question  "
	text := "Please refund my last payment.\n"

	doc := BuildDocument(&subject, &text)
	assert.Equal(t, "Subject: Billing question\n\nBody:\nPlease refund my last payment.", doc)

	// Nil parts become empty strings; the template itself stays fixed.
	assert.Equal(t, "Subject: \n\nBody:\n", BuildDocument(nil, nil))
	onlySubject := "Hi"
	assert.Equal(t, "Subject: Hi\n\nBody:\n", BuildDocument(&onlySubject, nil))
}

func TestPromptContent(t *testing.T) {
	assert.Equal(t, "Email Content:\nSubject: \n\nBody:\n", PromptContent(BuildDocument(nil, nil)))
}
