// Package repository contains data access logic for the gateway's local
// MySQL audit database.  Shared sentinel errors live here; repos return
// them so handlers can map database conditions to HTTP statuses without
// inspecting driver errors.
package repository

import "errors"

// ErrStationNotFound indicates that no station row matched the lookup.
var ErrStationNotFound = errors.New("station not found")

// ErrScanEventNotFound indicates that no scan event row matched the lookup.
var ErrScanEventNotFound = errors.New("scan event not found")

// ErrBadStationKey indicates the presented API key did not match the
// station's stored hash.
var ErrBadStationKey = errors.New("bad station key")
