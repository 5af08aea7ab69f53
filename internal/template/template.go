// Package template turns an outreach category and a free-text purpose into a
// ready-to-send subject and body.
package template

import (
	"fmt"
	"sort"
	"strings"

	"outreach-service/internal/domain"
)

// Placeholder tokens recognised in category bodies.
const (
	PlaceholderName             = "{NAME}"
	PlaceholderPurpose          = "{PURPOSE}"
	PlaceholderNumber           = "{NUMBER}"
	PlaceholderKeyMetrics       = "{KEY_METRICS}"
	PlaceholderProductOrService = "{PRODUCT_OR_SERVICE}"
	PlaceholderSenderName       = "{SENDER_NAME}"
)

const (
	DefaultNumber           = "5+"
	DefaultKeyMetrics       = "strong growth metrics"
	DefaultProductOrService = "premium solutions"
	DefaultSenderName       = "[Your Name]"
)

// Fields are the caller-supplied values. RecipientName and Purpose are required.
type Fields struct {
	RecipientName    string
	Purpose          string
	Number           string
	KeyMetrics       string
	ProductOrService string
	SenderName       string
}

type Rendered struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type category struct {
	subject string // fmt verb %s receives the purpose
	body    string
}

var registry = map[string]category{
	"principal": {
		subject: "Inquiry Regarding %s - Professional Request",
		body: "Dear Dr. {NAME},\n\nI hope this message finds you well. I am writing to express my interest in {PURPOSE} at your esteemed institution.\n\n" +
			"With my background and passion for education, I believe I can contribute significantly to your school's mission and help students achieve their potential.\n\n" +
			"I would appreciate the opportunity to discuss this further. Would you have time for a brief conversation?\n\n" +
			"Thank you for considering my request.\n\nBest regards,\n{SENDER_NAME}",
	},
	"professor": {
		subject: "%s Opportunity - Academic Discussion",
		body: "Dear Prof. {NAME},\n\nI hope you are well. I am writing regarding {PURPOSE}.\n\n" +
			"Your groundbreaking work in this field has deeply inspired my academic and professional journey. I greatly admire your contributions and would be honored to discuss potential collaboration or mentorship opportunities.\n\n" +
			"Would you be available for a discussion at your convenience?\n\n" +
			"Thank you for considering my request.\n\nBest regards,\n{SENDER_NAME}",
	},
	"university": {
		subject: "Application for %s",
		body: "Dear Admissions Team,\n\nI am writing to express my strong interest in {PURPOSE} with your institution.\n\n" +
			"Your university's commitment to excellence and innovation aligns perfectly with my academic goals and values. I am confident that I can make meaningful contributions to your academic community.\n\n" +
			"I would welcome the opportunity to discuss how I can support your institution's mission.\n\n" +
			"Thank you for your consideration.\n\nBest regards,\n{SENDER_NAME}",
	},
	"hr": {
		subject: "Application for %s",
		body: "Dear {NAME},\n\nI hope this email finds you in good health. I am writing to express my interest in {PURPOSE} at your esteemed organization.\n\n" +
			"With {NUMBER} years of experience in my field, I have developed strong skills in leadership, problem-solving, and team collaboration. I am confident that these skills will enable me to make significant contributions to your team.\n\n" +
			"I would appreciate the opportunity to discuss how my background aligns with your needs.\n\nBest regards,\n{SENDER_NAME}",
	},
	"cto": {
		subject: "%s - Technical Opportunity",
		body: "Dear {NAME},\n\nI hope you're having a great day. I'm reaching out regarding {PURPOSE}.\n\n" +
			"I have extensive experience with cutting-edge technologies and have successfully led teams to deliver innovative solutions. I believe my technical expertise and strategic vision could add significant value to your organization.\n\n" +
			"Would you be open to a conversation about potential opportunities?\n\nBest regards,\n{SENDER_NAME}",
	},
	"investor": {
		subject: "Investment Opportunity: %s",
		body: "Dear {NAME},\n\nI am reaching out regarding an exciting opportunity for {PURPOSE}.\n\n" +
			"Our business model has demonstrated strong market potential with {KEY_METRICS}. We are seeking investors who share our vision for growth and innovation.\n\n" +
			"I would love to schedule a brief call to discuss how this opportunity aligns with your investment portfolio.\n\nBest regards,\n{SENDER_NAME}",
	},
	"client": {
		subject: "Proposal for %s",
		body: "Dear {NAME},\n\nI hope you're doing well. I am writing to propose {PURPOSE} that I believe could benefit your organization.\n\n" +
			"Based on my understanding of your business, I have identified several opportunities where our solutions can drive measurable value. I would be delighted to discuss how we can partner for mutual success.\n\n" +
			"Would you have time for a brief meeting?\n\nBest regards,\n{SENDER_NAME}",
	},
	"vendor": {
		subject: "Partnership Opportunity: %s",
		body: "Dear {NAME},\n\nI am reaching out regarding {PURPOSE} between our companies.\n\n" +
			"We specialize in providing high-quality {PRODUCT_OR_SERVICE} that has consistently delivered excellent results for our partners. I believe our offerings could be mutually beneficial for our organizations.\n\n" +
			"I would welcome the opportunity to discuss potential collaboration.\n\nBest regards,\n{SENDER_NAME}",
	},
	"media": {
		subject: "Story Pitch: %s",
		body: "Dear {NAME},\n\nI am writing to share an exciting story about {PURPOSE} that I believe would be of great interest to your readers/audience.\n\n" +
			"This initiative showcases innovation and positive impact in our industry. I would be delighted to provide more details, schedule an interview, or facilitate a site visit.\n\n" +
			"Please let me know if you would like to explore this further.\n\nBest regards,\n{SENDER_NAME}",
	},
}

// Categories returns the registered category names in sorted order.
func Categories() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subject derives the subject line for a category. Unknown categories fall back
// to "Regarding <purpose>".
func Subject(categoryName, purpose string) string {
	c, ok := registry[categoryName]
	if !ok {
		return "Regarding " + purpose
	}
	return fmt.Sprintf(c.subject, purpose)
}

// Render fills the category body and derives its subject.
func Render(categoryName string, fields Fields) (Rendered, error) {
	c, ok := registry[categoryName]
	if !ok {
		return Rendered{}, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, categoryName)
	}

	name := strings.TrimSpace(fields.RecipientName)
	if name == "" {
		return Rendered{}, fmt.Errorf("%w: recipientName", domain.ErrMissingField)
	}
	purpose := strings.TrimSpace(fields.Purpose)
	if purpose == "" {
		return Rendered{}, fmt.Errorf("%w: purpose", domain.ErrMissingField)
	}

	r := strings.NewReplacer(
		PlaceholderName, name,
		PlaceholderPurpose, purpose,
		PlaceholderNumber, orDefault(fields.Number, DefaultNumber),
		PlaceholderKeyMetrics, orDefault(fields.KeyMetrics, DefaultKeyMetrics),
		PlaceholderProductOrService, orDefault(fields.ProductOrService, DefaultProductOrService),
		PlaceholderSenderName, orDefault(fields.SenderName, DefaultSenderName),
	)

	return Rendered{
		Subject: Subject(categoryName, purpose),
		Body:    r.Replace(c.body),
	}, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
