package domain

// Column identifies a categorical breakdown field used for grouping
// and counting.
type Column string

const (
	ColumnStatus      Column = "Status.Name"
	ColumnGroup       Column = "Group.Name"
	ColumnSubCategory Column = "Sub Category.Name"
	ColumnIPCFeature  Column = "IPC Feature List"
	ColumnTechnician  Column = "Technician.Name"
	ColumnRequester   Column = "Requester.Name"
	ColumnDevOpsRef   Column = "DevOpsRef"
	ColumnPriority    Column = "Priority.Name"
)

// Field returns the ticket's value for a breakdown column. Unknown
// columns yield an empty string.
func (t Ticket) Field(c Column) string {
	switch c {
	case ColumnStatus:
		return t.StatusRaw
	case ColumnGroup:
		return t.Group
	case ColumnSubCategory:
		return t.SubCategory
	case ColumnIPCFeature:
		return t.IPCFeature
	case ColumnTechnician:
		return t.Technician
	case ColumnRequester:
		return t.Requester
	case ColumnDevOpsRef:
		return t.DevOpsRef
	case ColumnPriority:
		return t.Priority
	default:
		return ""
	}
}
