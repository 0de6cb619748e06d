package main

import (
	"strings"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// InviteURL is the link a second player opens to join a room
func InviteURL(base, roomID string) string {
	return strings.TrimRight(base, "/") + "/" + roomID
}

// InviteQR renders the invite link as a PNG
func InviteQR(base, roomID string) ([]byte, error) {
	return qrcode.Encode(InviteURL(base, roomID), qrcode.Medium, qrSize)
}
