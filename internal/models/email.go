package models

// EmailMessage письмо, которое API кладёт в очередь, а sender доставляет по SMTP.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}
