package database

import (
	"database/sql"
	"fmt"
	"time"
)

type seedCustomer struct {
	name, email, company, tier string
	signupDaysAgo              int
}

type seedTicket struct {
	customerID       int
	subject          string
	status, priority string
	createdDaysAgo   int
	resolvedDaysAgo  int // -1 means unresolved
}

type seedInteraction struct {
	ticketID        int
	kind, agent     string
	daysAgo         int
	durationMinutes int // 0 means null
}

type seedNote struct {
	customerID int
	text       string
	createdBy  string
	daysAgo    int
	tags       string
}

// Seed populates the business tables with a small, realistic data set for
// demos and local development. Existing rows are left alone.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM customers").Scan(&count); err != nil {
		return fmt.Errorf("failed to check existing data: %w", err)
	}
	if count > 0 {
		return nil
	}

	customers := []seedCustomer{
		{"Sarah Johnson", "sarah.johnson@techcorp.com", "TechCorp Industries", "enterprise", 365},
		{"Michael Chen", "mchen@innovate.io", "Innovate Labs", "pro", 280},
		{"Emily Rodriguez", "emily.r@designstudio.com", "Creative Design Studio", "pro", 180},
		{"David Kim", "dkim@startup.co", "Startup Ventures", "free", 90},
		{"Lisa Anderson", "l.anderson@consulting.com", "Anderson Consulting Group", "enterprise", 200},
		{"James Thompson", "jthompson@retail.com", "Thompson Retail Solutions", "pro", 150},
		{"Maria Garcia", "maria@ecommerce.io", "E-Commerce Plus", "free", 45},
		{"Robert Wilson", "rwilson@finance.co", "Wilson Financial Services", "enterprise", 320},
	}

	tickets := []seedTicket{
		{1, "API rate limits causing errors in production", "resolved", "urgent", 30, 28},
		{1, "Request for increased storage quota", "resolved", "medium", 60, 55},
		{2, "Dashboard not loading properly on Safari", "resolved", "high", 15, 14},
		{2, "Need help with webhook integration", "open", "medium", 3, -1},
		{3, "Unable to export reports to PDF", "in_progress", "high", 7, -1},
		{4, "Question about upgrading to pro tier", "resolved", "low", 20, 19},
		{5, "SSO configuration for new team members", "open", "high", 2, -1},
		{5, "Audit log retention policy question", "resolved", "medium", 40, 38},
		{6, "Billing discrepancy on last invoice", "in_progress", "urgent", 5, -1},
		{7, "Password reset emails not arriving", "resolved", "high", 10, 9},
		{8, "Data export taking longer than expected", "open", "medium", 1, -1},
		{8, "Feature request: scheduled reports", "closed", "low", 70, 65},
	}

	interactions := []seedInteraction{
		{1, "email", "Alex Rivera", 30, 0},
		{1, "phone", "Alex Rivera", 29, 35},
		{1, "email", "Alex Rivera", 28, 0},
		{2, "email", "Jordan Lee", 58, 0},
		{3, "chat", "Sam Patel", 15, 22},
		{3, "email", "Sam Patel", 14, 0},
		{4, "email", "Jordan Lee", 3, 0},
		{5, "chat", "Alex Rivera", 7, 18},
		{5, "phone", "Alex Rivera", 6, 40},
		{6, "email", "Sam Patel", 20, 0},
		{7, "phone", "Jordan Lee", 2, 25},
		{8, "email", "Alex Rivera", 39, 0},
		{9, "chat", "Sam Patel", 5, 30},
		{10, "email", "Jordan Lee", 10, 0},
		{11, "chat", "Alex Rivera", 1, 12},
		{12, "note", "Sam Patel", 68, 0},
	}

	notes := []seedNote{
		{1, "Key enterprise account. Prefers phone contact for urgent issues.", "Alex Rivera", 25, "vip,enterprise"},
		{2, "Evaluating competitor products, renewal at risk.", "Jordan Lee", 12, "churn-risk"},
		{4, "Interested in pro tier once team grows past five seats.", "Sam Patel", 18, "upsell"},
		{5, "Very satisfied with dedicated support channel. They have referred two other companies to us.", "Alex Rivera", 30, "vip,referral"},
		{8, "Finance sector compliance requirements, handle data requests carefully.", "Jordan Lee", 50, "compliance,enterprise"},
	}

	now := time.Now()

	for _, c := range customers {
		_, err := db.Exec(
			`INSERT INTO customers (name, email, company, signup_date, tier) VALUES ($1, $2, $3, $4, $5)`,
			c.name, c.email, c.company, now.AddDate(0, 0, -c.signupDaysAgo), c.tier,
		)
		if err != nil {
			return fmt.Errorf("failed to seed customer %s: %w", c.email, err)
		}
	}

	for _, t := range tickets {
		var resolvedAt interface{}
		if t.resolvedDaysAgo >= 0 {
			resolvedAt = now.AddDate(0, 0, -t.resolvedDaysAgo)
		}
		_, err := db.Exec(
			`INSERT INTO support_tickets (customer_id, subject, status, priority, created_at, resolved_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			t.customerID, t.subject, t.status, t.priority, now.AddDate(0, 0, -t.createdDaysAgo), resolvedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to seed ticket %q: %w", t.subject, err)
		}
	}

	for _, i := range interactions {
		var duration interface{}
		if i.durationMinutes > 0 {
			duration = i.durationMinutes
		}
		_, err := db.Exec(
			`INSERT INTO interactions (ticket_id, interaction_type, occurred_at, agent_name, duration_minutes) VALUES ($1, $2, $3, $4, $5)`,
			i.ticketID, i.kind, now.AddDate(0, 0, -i.daysAgo), i.agent, duration,
		)
		if err != nil {
			return fmt.Errorf("failed to seed interaction for ticket %d: %w", i.ticketID, err)
		}
	}

	for _, n := range notes {
		_, err := db.Exec(
			`INSERT INTO customer_notes (customer_id, note_text, created_by, created_at, tags) VALUES ($1, $2, $3, $4, $5)`,
			n.customerID, n.text, n.createdBy, now.AddDate(0, 0, -n.daysAgo), n.tags,
		)
		if err != nil {
			return fmt.Errorf("failed to seed note for customer %d: %w", n.customerID, err)
		}
	}

	return nil
}
