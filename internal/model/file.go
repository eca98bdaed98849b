package model

// File is a stored upload. Content holds the bytes when cloud storage is disabled,
// otherwise StorageObjectName points at the object in the bucket.
type File struct {
	ID                int     `gorm:"primaryKey" json:"id"`
	Content           []byte  `json:"-"`
	Extension         string  `json:"extension"`
	StorageObjectName *string `json:"-"`
}
