package ui

import "time"

type snapshotMsg struct {
	snap *Snapshot
}

type errMsg struct {
	err error
}

type tickMsg time.Time
