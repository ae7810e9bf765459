package service

import "math/rand/v2"

// Shuffler reorders options in place.
type Shuffler func(options []string)

// RandomShuffle is a Fisher-Yates shuffle over the global source.
func RandomShuffle(options []string) {
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
}

// shuffledOptions returns a fresh, shuffled copy of the question's options.
func shuffledOptions(options []string, shuffle Shuffler) []string {
	out := make([]string, len(options))
	copy(out, options)
	shuffle(out)
	return out
}
