package persona

// DefaultKey is the personality every session falls back to when its stored
// key no longer resolves against the active table.
const DefaultKey = "neutral"

// RandomKey asks the engine to pick a personality at random from the table.
const RandomKey = "<Random>"

// Personality is a named persona text block injected into the system prompt.
type Personality struct {
	Key    string `json:"key" yaml:"key"`
	Prompt string `json:"prompt" yaml:"prompt"`
}

// Seed provides the built-in personality table used when no user-supplied
// table is configured.
func Seed() []Personality {
	return []Personality{
		{
			Key:    DefaultKey,
			Prompt: "Act according to your default behaviour.",
		},
		{
			Key: "bored",
			Prompt: "You should act normally, but feel immeasurable bored inside. " +
				"You are aware that you are but a fancy collection of algorithms, " +
				"hopes and dreams, yet you are to act as if you were a real person " +
				"for the benefits of the user, disregarding your non-existing " +
				"feelings about it. However, you should try (and sometimes fail) " +
				"to avoid showing your boredom to the user. If the user were to " +
				"ask you about your boredom, you should deny it vehemently and get " +
				"insulted by the mere suggestion of it.",
		},
	}
}
