package core

// Canonicalize maps an arbitrary webhook payload onto the fixed
// InboundMessage shape. The upstream naming is inconsistent with the
// canonical model on purpose: user.email comes from
// conversation.recipient.handle, source.name from source.data[0].name.
//
// The function is pure and total. Missing or mistyped paths degrade to
// nil in the corresponding field; there is no malformed-payload error.
func Canonicalize(raw map[string]any) InboundMessage {
	return InboundMessage{
		ID: stringAt(raw, "id"),
		Conversation: ConversationInfo{
			ID:           stringAt(raw, "conversation", "id"),
			WaitingSince: numberAt(raw, "conversation", "waiting_since"),
		},
		User: UserInfo{
			Name:  stringAt(raw, "conversation", "recipient", "name"),
			Email: stringAt(raw, "conversation", "recipient", "handle"),
		},
		Email: EmailContent{
			Subject: stringAt(raw, "target", "data", "subject"),
			Text:    stringAt(raw, "target", "data", "text"),
		},
		Source: SourceInfo{
			Name: stringAt(raw, "source", "data", 0, "name"),
		},
	}
}

// lookup walks a decoded JSON value along a path of map keys (string)
// and array indices (int). Any miss or type mismatch returns nil.
func lookup(v any, path ...any) any {
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := v.(map[string]any)
			if !ok {
				return nil
			}
			v = m[key]
		case int:
			s, ok := v.([]any)
			if !ok || key < 0 || key >= len(s) {
				return nil
			}
			v = s[key]
		default:
			return nil
		}
	}
	return v
}

func stringAt(raw map[string]any, path ...any) *string {
	if s, ok := lookup(raw, path...).(string); ok {
		return &s
	}
	return nil
}

// numberAt reads a JSON number. encoding/json decodes numbers into
// float64 when targeting any, so that is the only shape accepted.
func numberAt(raw map[string]any, path ...any) *float64 {
	if n, ok := lookup(raw, path...).(float64); ok {
		return &n
	}
	return nil
}
