package domain

// Profile is a white-label sender identity. Outreach bodies are personalized
// with the active profile so the same engine can run for multiple clients.
type Profile struct {
	CompanyName string `yaml:"company_name" json:"company_name"`
	SenderName  string `yaml:"sender_name" json:"sender_name"`
	Phone       string `yaml:"phone" json:"phone"`
	TrustLink   string `yaml:"trust_link" json:"trust_link"`
}
