// Package idhash derives stable record identities. Parser-generated ids
// are placeholders unique only within one import batch; the ingestion
// layer replaces them with these deterministic hashes before storage so
// that re-importing the same export yields the same identities.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// TradeID computes a deterministic trade id using SHA256.
// Formula: SHA256(owner_id|pair|open_time|quantity|entry_price)
// Returns hex-encoded hash (64 characters).
func TradeID(ownerID, pair, openTime string, quantity, entryPrice float64) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%s",
		ownerID,
		pair,
		openTime,
		strconv.FormatFloat(quantity, 'g', -1, 64),
		strconv.FormatFloat(entryPrice, 'g', -1, 64),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// FundingID computes a deterministic funding record id using SHA256.
// Formula: SHA256(owner_id|date|asset|amount)
func FundingID(ownerID, date, asset string, amount float64) string {
	data := fmt.Sprintf("%s|%s|%s|%s",
		ownerID,
		date,
		asset,
		strconv.FormatFloat(amount, 'g', -1, 64),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
