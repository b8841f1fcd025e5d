package models

// ReportKind тип заявки.
type ReportKind string

const (
	ReportKindLost  ReportKind = "lost"
	ReportKindFound ReportKind = "found"
)

// IsValid проверяет, что тип заявки известен.
func (k ReportKind) IsValid() bool {
	switch k {
	case ReportKindLost, ReportKindFound:
		return true
	}
	return false
}

// ReportStatus статус модерации заявки.
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusApproved ReportStatus = "approved"
	ReportStatusRejected ReportStatus = "rejected"
)

// IsValid проверяет, что статус известен.
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusPending, ReportStatusApproved, ReportStatusRejected:
		return true
	}
	return false
}

// IsTerminal сообщает, что решение по заявке уже принято.
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusApproved || s == ReportStatusRejected
}

// CanTransitionTo проверяет допустимость перехода статуса.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	transitions := map[ReportStatus][]ReportStatus{
		ReportStatusPending:  {ReportStatusApproved, ReportStatusRejected},
		ReportStatusApproved: {},
		ReportStatusRejected: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == next {
			return true
		}
	}
	return false
}
