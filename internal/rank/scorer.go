package rank

// Scorer turns fetched site text into a qualification score, a pain-point
// sentence, and the signal tags that fired.
type Scorer interface {
	Score(siteText string) (score int, summary string, tags []string)
}
