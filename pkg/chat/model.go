package chat

// Model identifies a chat completion model.
//
// Only the constants below are accepted by the request schema. Responses may
// name a model outside this set (the vendor ships models on its own schedule);
// the raw name is kept and Known reports false.
type Model string

const (
	ModelGPT35Turbo     Model = "gpt-3.5-turbo"
	ModelGPT35Turbo0301 Model = "gpt-3.5-turbo-0301"
	ModelGPT4           Model = "gpt-4"
	ModelGPT40314       Model = "gpt-4-0314"
	ModelGPT432K        Model = "gpt-4-32k"
	ModelGPT432K0314    Model = "gpt-4-32k-0314"
)

// DefaultModel is used when Config.Model is empty and for Prompt shorthand.
const DefaultModel = ModelGPT35Turbo

var knownModels = []Model{
	ModelGPT35Turbo,
	ModelGPT35Turbo0301,
	ModelGPT4,
	ModelGPT40314,
	ModelGPT432K,
	ModelGPT432K0314,
}

// Models returns the supported model identifiers in declaration order.
func Models() []Model {
	out := make([]Model, len(knownModels))
	copy(out, knownModels)
	return out
}

// Known reports whether m is one of the supported model identifiers.
func (m Model) Known() bool {
	for _, k := range knownModels {
		if m == k {
			return true
		}
	}
	return false
}

func (m Model) String() string { return string(m) }

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Known reports whether r is system, user, or assistant.
func (r Role) Known() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// FinishReason tells why generation stopped for a choice. The zero value
// corresponds to a JSON null: the output is still in progress or incomplete.
type FinishReason string

const (
	FinishReasonNone          FinishReason = ""
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// Known reports whether f is one of the documented finish reasons, including
// the null (in progress) case.
func (f FinishReason) Known() bool {
	switch f {
	case FinishReasonNone, FinishReasonStop, FinishReasonLength, FinishReasonContentFilter:
		return true
	}
	return false
}

// Complete reports whether generation finished (any non-null reason).
func (f FinishReason) Complete() bool {
	return f != FinishReasonNone
}
