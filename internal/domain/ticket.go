package domain

// TicketCategory classifies a support ticket.
type TicketCategory string

const (
	CategoryGrades    TicketCategory = "grades"
	CategoryContent   TicketCategory = "content"
	CategoryTechnical TicketCategory = "technical"
	CategoryGeneral   TicketCategory = "general"
)

// Valid reports whether c is one of the known categories.
func (c TicketCategory) Valid() bool {
	switch c {
	case CategoryGrades, CategoryContent, CategoryTechnical, CategoryGeneral:
		return true
	}
	return false
}

// TicketPriority is the urgency of a ticket.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TicketRequest is the payload sent to the ticket service.
type TicketRequest struct {
	Identity
	CourseID    string         `json:"courseId,omitempty"`
	CourseName  string         `json:"courseName,omitempty"`
	Subject     string         `json:"subject"`
	Description string         `json:"description"`
	Category    TicketCategory `json:"category"`
	Priority    TicketPriority `json:"priority"`
}

// Ticket is a support ticket as echoed back by the ticket service.
type Ticket struct {
	ID string `json:"id"`
	TicketRequest
	Status string `json:"status"`
}
