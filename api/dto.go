/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ENCODING:
  Amounts cross the wire as decimal STRINGS ("3.50"), never floats. The
  engine computes exactly; the API must not reintroduce binary rounding.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

// =============================================================================
// TASK PAYLOAD
// =============================================================================

// RewardSpecDTO is one reward attached to a task payload.
type RewardSpecDTO struct {
	Kind     string `json:"kind"`
	Value    string `json:"value"`
	Currency string `json:"currency,omitempty"`
}

// EstimateRequest is a draft task configuration to cost out.
type EstimateRequest struct {
	MinLevel         *int            `json:"min_level,omitempty"`
	MaxLevel         *int            `json:"max_level,omitempty"`
	AssigneeIDs      []string        `json:"assignee_ids,omitempty"`
	Participants     *int            `json:"number_of_participants,omitempty"`
	LevelCoefficient bool            `json:"level_coefficient"`
	Rewards          []RewardSpecDTO `json:"rewards"`
}

// EstimateResponse carries the projection. Exactly one of min/max or total
// is meaningful; unused fields are "0".
type EstimateResponse struct {
	Min   string `json:"min"`
	Max   string `json:"max"`
	Total string `json:"total"`
}

// CompleteRequest asks the engine to apply all rewards of a completed task
// to one ambassador. The surrounding workflow must send this at most once
// per (task, ambassador) pair.
type CompleteRequest struct {
	TaskID           string          `json:"task_id"`
	ProjectID        string          `json:"project_id,omitempty"`
	LevelCoefficient bool            `json:"level_coefficient"`
	Rewards          []RewardSpecDTO `json:"rewards"`

	AmbassadorID    string `json:"ambassador_id"`
	AmbassadorLevel int    `json:"ambassador_level"`
	RatingPoints    string `json:"rating_points,omitempty"`
}

// AppliedDTO is the per-spec outcome of a completion.
type AppliedDTO struct {
	Kind      string    `json:"kind"`
	OK        bool      `json:"ok"`
	Attempted bool      `json:"attempted"`
	Error     string    `json:"error,omitempty"`
	Entry     *EntryDTO `json:"entry,omitempty"`
}

// =============================================================================
// WALLET / LEDGER
// =============================================================================

// WalletDTO represents a wallet in API responses.
type WalletDTO struct {
	ID           string `json:"id"`
	AmbassadorID string `json:"ambassador_id"`
	Currency     string `json:"currency"`
	Balance      string `json:"balance"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// EntryDTO represents one ledger entry in API responses.
type EntryDTO struct {
	ID        string `json:"id"`
	WalletID  string `json:"wallet_id"`
	TaskID    string `json:"task_id,omitempty"`
	Value     string `json:"value"`
	Points    string `json:"points,omitempty"`
	CreatedAt string `json:"created_at"`
}

// BalanceDTO is a single-currency balance lookup result.
type BalanceDTO struct {
	AmbassadorID string `json:"ambassador_id"`
	Currency     string `json:"currency"`
	Balance      string `json:"balance"`
}

// ReconcileResponse reports a drift audit.
type ReconcileResponse struct {
	WalletID string `json:"wallet_id"`
	InSync   bool   `json:"in_sync"`
	Detail   string `json:"detail,omitempty"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
