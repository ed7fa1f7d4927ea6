package domain

import "time"

// Action identifies the kind of event recorded in the activity log.
// The set is closed: the store rejects unknown actions so a typo in a
// call site surfaces as an error instead of an unclassifiable row.
type Action string

const (
	ActionLogin             Action = "LOGIN"
	ActionLogout            Action = "LOGOUT"
	ActionRegister          Action = "REGISTER"
	ActionAccountLocked     Action = "ACCOUNT_LOCKED"
	ActionUpdateProfile     Action = "UPDATE_PROFILE"
	ActionChangePassword    Action = "CHANGE_PASSWORD"
	ActionEnableMFA         Action = "ENABLE_MFA"
	ActionCreateProduct     Action = "CREATE_PRODUCT"
	ActionApproveProduct    Action = "APPROVE_PRODUCT"
	ActionOrderPlaced       Action = "ORDER_PLACED"
	ActionPayment           Action = "PAYMENT"
	ActionPaymentFailed     Action = "PAYMENT_FAILED"
	ActionRefundRequested   Action = "REFUND_REQUESTED"
	ActionRefundApproved    Action = "REFUND_APPROVED"
	ActionRefundRejected    Action = "REFUND_REJECTED"
	ActionOrderStatusUpdate Action = "ORDER_STATUS_UPDATE"
)

var validActions = map[Action]bool{
	ActionLogin:             true,
	ActionLogout:            true,
	ActionRegister:          true,
	ActionAccountLocked:     true,
	ActionUpdateProfile:     true,
	ActionChangePassword:    true,
	ActionEnableMFA:         true,
	ActionCreateProduct:     true,
	ActionApproveProduct:    true,
	ActionOrderPlaced:       true,
	ActionPayment:           true,
	ActionPaymentFailed:     true,
	ActionRefundRequested:   true,
	ActionRefundApproved:    true,
	ActionRefundRejected:    true,
	ActionOrderStatusUpdate: true,
}

// Valid reports whether the action belongs to the known set.
func (a Action) Valid() bool {
	return validActions[a]
}

// ActivityLog is one append-only audit record. Records are never updated
// or deleted through the application.
type ActivityLog struct {
	ID        string
	UserID    string
	Action    Action
	Details   string
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}
