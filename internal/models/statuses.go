package models

type UserStatus string
type UserRole string
type OrganizationKind string
type JobStatus string
type EmploymentType string
type FieldType string
type TransactionType string
type HewanType string
type HewanStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	UserRoleCandidate   UserRole = "candidate"
	UserRoleRecruiter   UserRole = "recruiter"
	UserRoleMosqueAdmin UserRole = "mosque_admin"
	UserRoleAdmin       UserRole = "admin"

	OrganizationKindCompany OrganizationKind = "company"
	OrganizationKindMosque  OrganizationKind = "mosque"

	JobStatusDraft  JobStatus = "draft"
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"

	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
	EmploymentVolunteer  EmploymentType = "volunteer"

	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeEmail    FieldType = "email"
	FieldTypePhone    FieldType = "phone"
	FieldTypeURL      FieldType = "url"
	FieldTypeNumber   FieldType = "number"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeFile     FieldType = "file"
	FieldTypeDate     FieldType = "date"

	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"

	HewanSapi    HewanType = "sapi"
	HewanKambing HewanType = "kambing"
	HewanDomba   HewanType = "domba"
	HewanKerbau  HewanType = "kerbau"

	HewanStatusRegistered  HewanStatus = "registered"
	HewanStatusPaid        HewanStatus = "paid"
	HewanStatusSlaughtered HewanStatus = "slaughtered"
	HewanStatusDistributed HewanStatus = "distributed"
)

// ApplicationStatusApplied is the initial status of every application. Other
// statuses are free-form strings chosen by recruiters.
const ApplicationStatusApplied = "applied"

var (
	UserRoles       = []UserRole{UserRoleCandidate, UserRoleRecruiter, UserRoleMosqueAdmin, UserRoleAdmin}
	JobStatuses     = []JobStatus{JobStatusDraft, JobStatusOpen, JobStatusClosed}
	EmploymentTypes = []EmploymentType{EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentInternship, EmploymentVolunteer}
	FieldTypes      = []FieldType{
		FieldTypeText, FieldTypeTextarea, FieldTypeEmail, FieldTypePhone, FieldTypeURL,
		FieldTypeNumber, FieldTypeSelect, FieldTypeCheckbox, FieldTypeFile, FieldTypeDate,
	}
	TransactionTypes = []TransactionType{TransactionIncome, TransactionExpense}
	HewanTypes       = []HewanType{HewanSapi, HewanKambing, HewanDomba, HewanKerbau}
	HewanStatuses    = []HewanStatus{HewanStatusRegistered, HewanStatusPaid, HewanStatusSlaughtered, HewanStatusDistributed}
)

// MaxShares is how many shohibul may share one animal.
func (t HewanType) MaxShares() int {
	switch t {
	case HewanSapi, HewanKerbau:
		return 7
	default:
		return 1
	}
}
