package mailer

// Config holds delivery configuration. The Postmark tokens are optional so
// development environments can fall back to the dev sender.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"MAILER_SENDER_EMAIL,required"`
	ResetSubject         string `env:"MAILER_RESET_SUBJECT" envDefault:"Reset your password"`
}
