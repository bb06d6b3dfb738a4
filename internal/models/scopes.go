package models

import "gorm.io/gorm"

// Dialog returns a GORM scope matching messages exchanged between the two
// users in either direction.
func Dialog(userID, peerID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)", userID, peerID, peerID, userID)
	}
}

// WithTTL returns a GORM scope matching messages that carry a TTL.
func WithTTL(db *gorm.DB) *gorm.DB {
	return db.Where("ttl_sec IS NOT NULL")
}
