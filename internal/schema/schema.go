// Package schema holds the static description of the queryable business
// tables. The descriptor is built once at startup and shared read-only by
// every pipeline invocation; it is deliberately not introspected from the
// live database.
package schema

import (
	"fmt"
	"strings"
)

// Column describes one column of a business table
type Column struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Table describes one business table and its columns
type Table struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Columns     []Column `json:"columns"`
}

// Relationship describes a foreign-key link between two tables
type Relationship struct {
	FromTable  string `json:"from_table"`
	FromColumn string `json:"from_column"`
	ToTable    string `json:"to_table"`
	ToColumn   string `json:"to_column"`
}

// Descriptor is the full static schema document supplied to the translator
// as grounding context and served by the /schema endpoint.
type Descriptor struct {
	Tables        []Table        `json:"tables"`
	Relationships []Relationship `json:"relationships"`
}

// Default returns the customer-support schema descriptor.
func Default() *Descriptor {
	return &Descriptor{
		Tables: []Table{
			{
				Name:        "customers",
				Description: "Customer account information",
				Columns: []Column{
					{Name: "id", Type: "integer", Description: "unique customer identifier (primary key)"},
					{Name: "name", Type: "text", Description: "customer full name"},
					{Name: "email", Type: "text", Description: "unique email address"},
					{Name: "company", Type: "text", Description: "company name"},
					{Name: "signup_date", Type: "timestamp", Description: "when the customer joined"},
					{Name: "tier", Type: "text", Description: "account tier (free, pro, or enterprise)"},
				},
			},
			{
				Name:        "support_tickets",
				Description: "Customer support tickets",
				Columns: []Column{
					{Name: "id", Type: "integer", Description: "unique ticket identifier (primary key)"},
					{Name: "customer_id", Type: "integer", Description: "foreign key to customers"},
					{Name: "subject", Type: "text", Description: "ticket subject/description"},
					{Name: "status", Type: "text", Description: "status (open, in_progress, resolved, closed)"},
					{Name: "priority", Type: "text", Description: "priority (low, medium, high, urgent)"},
					{Name: "created_at", Type: "timestamp", Description: "when the ticket was created"},
					{Name: "resolved_at", Type: "timestamp", Description: "when the ticket was resolved, null if unresolved"},
				},
			},
			{
				Name:        "interactions",
				Description: "Support interactions with customers",
				Columns: []Column{
					{Name: "id", Type: "integer", Description: "unique interaction identifier (primary key)"},
					{Name: "ticket_id", Type: "integer", Description: "foreign key to support_tickets"},
					{Name: "interaction_type", Type: "text", Description: "type (email, chat, phone, note)"},
					{Name: "occurred_at", Type: "timestamp", Description: "when the interaction occurred"},
					{Name: "agent_name", Type: "text", Description: "name of the support agent"},
					{Name: "duration_minutes", Type: "integer", Description: "length of interaction, null for emails/notes"},
				},
			},
			{
				Name:        "customer_notes",
				Description: "Unstructured notes about customers",
				Columns: []Column{
					{Name: "id", Type: "integer", Description: "unique note identifier (primary key)"},
					{Name: "customer_id", Type: "integer", Description: "foreign key to customers"},
					{Name: "note_text", Type: "text", Description: "unstructured note content"},
					{Name: "created_by", Type: "text", Description: "person who created the note"},
					{Name: "created_at", Type: "timestamp", Description: "when the note was created"},
					{Name: "tags", Type: "text", Description: "comma-separated tags"},
				},
			},
		},
		Relationships: []Relationship{
			{FromTable: "support_tickets", FromColumn: "customer_id", ToTable: "customers", ToColumn: "id"},
			{FromTable: "interactions", FromColumn: "ticket_id", ToTable: "support_tickets", ToColumn: "id"},
			{FromTable: "customer_notes", FromColumn: "customer_id", ToTable: "customers", ToColumn: "id"},
		},
	}
}

// Prompt renders the descriptor as the textual grounding document embedded
// in the translation prompt.
func (d *Descriptor) Prompt() string {
	var sb strings.Builder

	sb.WriteString("Database Schema:\n")
	for i, table := range d.Tables {
		sb.WriteString(fmt.Sprintf("\n%d. %s table (%s):\n", i+1, table.Name, table.Description))
		for _, col := range table.Columns {
			sb.WriteString(fmt.Sprintf("   - %s: %s (%s)\n", col.Name, col.Type, col.Description))
		}
	}

	sb.WriteString("\nImportant relationships:\n")
	for _, rel := range d.Relationships {
		sb.WriteString(fmt.Sprintf("- %s.%s references %s.%s\n",
			rel.FromTable, rel.FromColumn, rel.ToTable, rel.ToColumn))
	}

	return sb.String()
}

// TableNames returns the names of all described tables in declaration order
func (d *Descriptor) TableNames() []string {
	names := make([]string, 0, len(d.Tables))
	for _, t := range d.Tables {
		names = append(names, t.Name)
	}
	return names
}
