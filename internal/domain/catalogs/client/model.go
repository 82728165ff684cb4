// Package client provides the Client catalog consumed by billing documents.
// Client CRUD lives outside this core; only the read surface used for
// document hydration and PDF rendering is defined here.
package client

import (
	"billcraft/internal/core/id"
)

// Client is the snapshot of a billed party as shown on documents.
type Client struct {
	ID      id.ID   `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	Company *string `db:"company" json:"company,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`
	Email   *string `db:"email" json:"email,omitempty"`
	Phone   *string `db:"phone" json:"phone,omitempty"`
}
