// Package domain defines the core business entities (users and saved bank
// account records) together with their validation rules and errors.
package domain
