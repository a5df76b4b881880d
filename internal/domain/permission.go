package domain

// Permission is a directed edge: users of FromDeptID may survey ToDeptID.
type Permission struct {
	FromDeptID int64
	ToDeptID   int64
}
