package models

import "time"

type User struct {
	ID   int64
	Name string
	Role string
}

type Group struct {
	ID   int64
	Name string
}

type UserGroup struct {
	UserID  int64
	GroupID int64
}

type Sale struct {
	ID     int64
	UserID int64
	Amount int64
	Date   time.Time
}
