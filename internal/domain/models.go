package domain

import "time"

// Enumerations
const (
	RolePetOwner   UserRole = "pet_owner"
	RoleVetOwner   UserRole = "vet_owner"
	RoleMainBranch UserRole = "main_branch"
	RoleSubBranch  UserRole = "sub_branch"

	BranchMain BranchType = "main"
	BranchSub  BranchType = "sub"

	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"

	ItemMedicine  InventoryItemType = "medicine"
	ItemVaccine   InventoryItemType = "vaccine"
	ItemSupply    InventoryItemType = "supply"
	ItemEquipment InventoryItemType = "equipment"

	StockSet      StockOperation = "set"
	StockAdd      StockOperation = "add"
	StockSubtract StockOperation = "subtract"

	RequestPending   StockRequestStatus = "pending"
	RequestApproved  StockRequestStatus = "approved"
	RequestRejected  StockRequestStatus = "rejected"
	RequestFulfilled StockRequestStatus = "fulfilled"
	RequestCancelled StockRequestStatus = "cancelled"

	UrgencyLow      RequestUrgency = "low"
	UrgencyNormal   RequestUrgency = "normal"
	UrgencyHigh     RequestUrgency = "high"
	UrgencyCritical RequestUrgency = "critical"

	InvoicePending InvoiceStatus = "pending"
	InvoicePartial InvoiceStatus = "partial"
	InvoicePaid    InvoiceStatus = "paid"

	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"

	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"

	ActionCreate AuditAction = "CREATE"
	ActionUpdate AuditAction = "UPDATE"
	ActionDelete AuditAction = "DELETE"
	ActionLogin  AuditAction = "LOGIN"
	ActionLogout AuditAction = "LOGOUT"
	ActionView   AuditAction = "VIEW"
	ActionExport AuditAction = "EXPORT"
	ActionPrint  AuditAction = "PRINT"

	SeverityInfo    AuditSeverity = "info"
	SeverityWarning AuditSeverity = "warning"
	SeverityError   AuditSeverity = "error"
)

type UserRole string
type BranchType string
type AppointmentStatus string
type InventoryItemType string
type StockOperation string
type StockRequestStatus string
type RequestUrgency string
type InvoiceStatus string
type NotificationType string
type NotificationPriority string
type AuditAction string
type AuditSeverity string

// StaffRole reports whether the role is clinic staff bound to a branch.
func (r UserRole) StaffRole() bool {
	return r == RoleMainBranch || r == RoleSubBranch
}

// Terminal reports whether no further lifecycle transition is allowed.
func (s StockRequestStatus) Terminal() bool {
	return s == RequestRejected || s == RequestFulfilled || s == RequestCancelled
}

// Active reports whether the appointment still claims the pet's slot.
func (s AppointmentStatus) Active() bool {
	return s == AppointmentScheduled || s == AppointmentConfirmed
}

type Money struct {
	Amount   int64
	Currency string
}

type Branch struct {
	ID        int64
	Name      string
	Type      BranchType
	Address   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Address      string
	Role         UserRole
	IsGoogle     bool
	PasswordHash *string
	PhotoURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// StaffAssignment binds a staff user to the clinic branch they operate.
type StaffAssignment struct {
	ID        int64
	UserID    int64
	BranchID  *int64
	Role      UserRole
	CreatedAt time.Time
	DeletedAt *time.Time
}

type Pet struct {
	ID          int64
	OwnerUserID int64
	Name        string
	Species     string
	Breed       string
	AgeMonths   *int
	WeightKg    *float64
	HealthNotes string
	PhotoURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

type Appointment struct {
	ID          int64
	PetID       int64
	OwnerUserID int64
	BranchID    int64
	ScheduledAt time.Time
	Status      AppointmentStatus
	Reason      string
	CostEst     Money
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// InventoryItem is one branch's row for a logical item; the same item is
// duplicated per branch.
type InventoryItem struct {
	ID           int64
	BranchID     int64
	Name         string
	Code         string
	Type         InventoryItemType
	CurrentStock int
	MinThreshold int
	ReorderLevel int
	UnitCost     Money
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// LowOnStock reports whether the row sits at or under its minimum threshold.
func (i InventoryItem) LowOnStock() bool {
	return i.CurrentStock <= i.MinThreshold
}

type StockRequest struct {
	ID                 int64
	Code               string
	RequestingBranchID int64
	TargetBranchID     int64
	ItemID             int64
	ItemName           string
	RequestedQuantity  int
	ApprovedQuantity   *int
	Status             StockRequestStatus
	Urgency            RequestUrgency
	Notes              string
	RejectionReason    string
	RequestedByUserID  int64
	DecidedByUserID    *int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

// StockTransaction is the append-only ledger row behind every committed
// stock change. Audit display only, never replayed for reconciliation.
type StockTransaction struct {
	ID          int64
	ItemID      int64
	BranchID    int64
	Operation   StockOperation
	Delta       int
	StockBefore int
	StockAfter  int
	Reason      string
	OperatorID  int64
	RequestID   *int64
	CreatedAt   time.Time
}

type LowStockAlert struct {
	ItemID       int64
	BranchID     int64
	ItemName     string
	CurrentStock int
	MinThreshold int
	OutOfStock   bool
}

type MedicalRecord struct {
	ID        int64
	PetID     int64
	VisitDate time.Time
	Findings  string
	Diagnosis string
	Treatment string
	VetName   string
	BranchID  *int64
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type Vaccination struct {
	ID          int64
	PetID       int64
	VaccineName string
	GivenAt     time.Time
	NextDueAt   *time.Time
	VetName     string
	Notes       string
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

type Invoice struct {
	ID          int64
	Number      string
	OwnerUserID int64
	BranchID    *int64
	Total       Money
	BalanceDue  Money
	Status      InvoiceStatus
	IssuedAt    time.Time
	Items       []InvoiceItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

type InvoiceItem struct {
	ID          int64
	InvoiceID   int64
	Description string
	Quantity    int
	UnitPrice   Money
	CreatedAt   time.Time
}

type Payment struct {
	ID        int64
	InvoiceID int64
	Amount    Money
	Method    string
	Reference string
	PaidAt    time.Time
	CreatedAt time.Time
}

type Notification struct {
	ID        int64
	UserID    *int64
	Title     string
	Message   string
	Type      NotificationType
	Priority  NotificationPriority
	CreatedAt time.Time
	ReadAt    *time.Time
	DeletedAt *time.Time
}

type AuditLog struct {
	ID         int64
	ActorID    *int64
	ActorName  string
	Action     AuditAction
	EntityType string
	EntityID   string
	EntityName string
	Before     []byte
	After      []byte
	Summary    string
	Severity   AuditSeverity
	LoggedAt   time.Time
	DeletedAt  *time.Time
}
