package domain

// InventoryPolicy mirrors Shopify's ProductVariantInventoryPolicy
type InventoryPolicy string

const (
	// ALLOW - customers may purchase when out of stock
	InventoryPolicyAllow InventoryPolicy = "ALLOW"
	// DENY - purchases stop at zero stock
	InventoryPolicyDeny InventoryPolicy = "DENY"
)

// IsValid checks if the inventory policy is valid
func (p InventoryPolicy) IsValid() bool {
	return p == InventoryPolicyAllow || p == InventoryPolicyDeny
}

// BulkOperationStatus mirrors Shopify's BulkOperationStatus
type BulkOperationStatus string

const (
	BulkOperationCreated   BulkOperationStatus = "CREATED"
	BulkOperationRunning   BulkOperationStatus = "RUNNING"
	BulkOperationCompleted BulkOperationStatus = "COMPLETED"
	BulkOperationFailed    BulkOperationStatus = "FAILED"
	BulkOperationCanceling BulkOperationStatus = "CANCELING"
	BulkOperationCanceled  BulkOperationStatus = "CANCELED"
	BulkOperationExpired   BulkOperationStatus = "EXPIRED"
)

// IsTerminal reports whether polling can stop
func (s BulkOperationStatus) IsTerminal() bool {
	switch s {
	case BulkOperationCompleted, BulkOperationFailed, BulkOperationCanceled, BulkOperationExpired:
		return true
	default:
		return false
	}
}

// AnomalyKind classifies extraction anomalies
type AnomalyKind string

const (
	AnomalyQuantityWithoutCode AnomalyKind = "quantity_without_code"
	AnomalyCodeWithoutQuantity AnomalyKind = "code_without_quantity"
)

// SyncRunStatus is the lifecycle of a SyncRun row
type SyncRunStatus string

const (
	SyncRunRunning   SyncRunStatus = "running"
	SyncRunCompleted SyncRunStatus = "completed"
	SyncRunFailed    SyncRunStatus = "failed"
	SyncRunTimedOut  SyncRunStatus = "timed_out"
)

// SubmissionSource says which surface a submission came through
type SubmissionSource string

const (
	SubmissionSourcePDF      SubmissionSource = "pdf"
	SubmissionSourceItemList SubmissionSource = "item_list"
)
