package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type resumeSessionRequest struct {
	UID        string `json:"uid"         validate:"required"`
	LoginToken string `json:"login_token" validate:"required"`
}

type redeemTransferRequest struct {
	UID        string `json:"uid"         validate:"required"`
	TransferID string `json:"transfer_id" validate:"required"`
}

// Count is validated by the service so a non-positive value maps to the
// protocol's invalid-argument failure, not a schema error.
type addClicksRequest struct {
	Count int64 `json:"count"`
}

type linkExternalRequest struct {
	Provider   string `json:"provider"    validate:"required,oneof=google discord"`
	ExternalID string `json:"external_id" validate:"required"`
}

type renameRequest struct {
	Username string `json:"username" validate:"required,min=1,max=32"`
}

type newUserResponse struct {
	UID        string `json:"uid"`
	LoginToken string `json:"login_token"`
}

type transferIDResponse struct {
	TransferID string `json:"transfer_id"`
}

type redeemTransferResponse struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	UID    string `json:"uid"`
	Clicks int64  `json:"clicks"`
}

type clicksResponse struct {
	Clicks int64 `json:"clicks"`
}

type statusResponse struct {
	Status string `json:"status"`
}
