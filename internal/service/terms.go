package service

// Terms document plumbing. The legal text is versioned, static content —
// it ships with the binary and changes only through a release, so there is
// no store behind it.

// TermsVersion is the version accounts must accept before using the
// Oracle. Bump it together with the document below; accounts then re-accept
// through POST /api/auth/accept-terms.
const TermsVersion = "1.0"

// TermsLastUpdated is the document's revision date, ISO 8601.
const TermsLastUpdated = "2025-12-09"

// TermsSection is one numbered section of a legal document.
type TermsSection struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// TermsDocument is a versioned legal document as served to clients.
type TermsDocument struct {
	Version     string         `json:"version"`
	LastUpdated string         `json:"lastUpdated"`
	Title       string         `json:"title"`
	Sections    []TermsSection `json:"sections"`
	Summary     string         `json:"summary,omitempty"`
}

var termsDocument = TermsDocument{
	Version:     TermsVersion,
	LastUpdated: TermsLastUpdated,
	Title:       "Terms and Conditions - The Invention of the Banana",
	Sections: []TermsSection{
		{
			ID:      "acceptance",
			Title:   "1. Acceptance of Terms",
			Content: `By accessing and using "The Invention of the Banana" website and services, you agree to be bound by these Terms and Conditions. If you do not agree to these terms, please do not use our services.`,
		},
		{
			ID:      "description",
			Title:   "2. Description of Service",
			Content: `"The Invention of the Banana" provides an educational and entertainment platform featuring fictional stories about the invention of bananas, an AI Oracle for banana-related queries, and a community for banana enthusiasts.`,
		},
		{
			ID:      "user-accounts",
			Title:   "3. User Accounts",
			Content: `To access certain features, you must create an account using Google or GitHub OAuth. You are responsible for maintaining the confidentiality of your account and all activities under it. You must be at least 13 years old to use this service.`,
		},
		{
			ID:      "ai-oracle",
			Title:   "4. AI Oracle Usage",
			Content: `The AI Oracle feature uses artificial intelligence to generate responses about bananas. These responses are for entertainment purposes only and should not be considered factual information. Free tier users are limited to 10 Oracle queries per day.`,
		},
		{
			ID:      "content",
			Title:   "5. User Content",
			Content: `You retain ownership of content you submit. By submitting content, you grant us a non-exclusive, worldwide, royalty-free license to use, display, and distribute your content on our platform.`,
		},
		{
			ID:      "prohibited",
			Title:   "6. Prohibited Conduct",
			Content: `You agree not to: (a) use the service for illegal purposes, (b) attempt to gain unauthorized access, (c) interfere with the service's operation, (d) submit false or misleading information, (e) impersonate others.`,
		},
		{
			ID:      "disclaimer",
			Title:   "7. Disclaimer",
			Content: `THE SERVICE IS PROVIDED "AS IS" WITHOUT WARRANTIES OF ANY KIND. We do not warrant that the service will be uninterrupted, error-free, or secure. All banana invention stories are fictional and for entertainment purposes.`,
		},
		{
			ID:      "limitation",
			Title:   "8. Limitation of Liability",
			Content: `IN NO EVENT SHALL WE BE LIABLE FOR ANY INDIRECT, INCIDENTAL, SPECIAL, CONSEQUENTIAL, OR PUNITIVE DAMAGES ARISING FROM YOUR USE OF THE SERVICE.`,
		},
		{
			ID:      "changes",
			Title:   "9. Changes to Terms",
			Content: `We reserve the right to modify these terms at any time. We will notify users of significant changes via email or prominent notice on the website. Continued use after changes constitutes acceptance.`,
		},
		{
			ID:      "contact",
			Title:   "10. Contact Information",
			Content: `For questions about these Terms and Conditions, please contact us at legal@banana-site.com.`,
		},
	},
	Summary: `By using The Invention of the Banana, you agree to use the service responsibly, understand that all content is fictional and for entertainment, and accept the limitations of our AI Oracle feature.`,
}

var privacyPolicy = TermsDocument{
	Version:     TermsVersion,
	LastUpdated: TermsLastUpdated,
	Title:       "Privacy Policy - The Invention of the Banana",
	Sections: []TermsSection{
		{
			ID:      "collection",
			Title:   "1. Information We Collect",
			Content: `We collect: (a) Account information from OAuth providers (email, name, avatar), (b) Usage data and analytics, (c) Content you submit, (d) AI Oracle query history.`,
		},
		{
			ID:      "use",
			Title:   "2. How We Use Information",
			Content: `We use your information to: (a) Provide and improve our services, (b) Personalize your experience, (c) Communicate with you, (d) Ensure security and prevent abuse.`,
		},
		{
			ID:      "sharing",
			Title:   "3. Information Sharing",
			Content: `We do not sell your personal information. We may share data with: (a) Service providers who assist our operations, (b) Law enforcement when required, (c) In connection with a business transfer.`,
		},
		{
			ID:      "security",
			Title:   "4. Data Security",
			Content: `We implement industry-standard security measures to protect your data. However, no method of transmission over the Internet is 100% secure.`,
		},
		{
			ID:      "rights",
			Title:   "5. Your Rights",
			Content: `You have the right to: (a) Access your data, (b) Correct inaccuracies, (c) Delete your account, (d) Export your data. Contact us to exercise these rights.`,
		},
	},
}

// TermsService serves the legal documents.
type TermsService struct{}

// NewTermsService creates a TermsService.
func NewTermsService() *TermsService {
	return &TermsService{}
}

// Document returns the full terms and conditions.
func (s *TermsService) Document() TermsDocument {
	return termsDocument
}

// Privacy returns the privacy policy.
func (s *TermsService) Privacy() TermsDocument {
	return privacyPolicy
}

// Summary returns the terms version and the short summary.
func (s *TermsService) Summary() (version, summary string) {
	return TermsVersion, termsDocument.Summary
}
