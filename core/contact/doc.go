// Package contact is the persistence layer for contact records.
//
// A Contact carries an optional email, an optional phone number and its link
// precedence. Contacts sharing one primary form an identity cluster: the primary
// itself plus every contact whose linked_id points at it.
//
// The Store interface is a pure persistence abstraction. GormStore implements it
// with GORM; WithinTx hands out a transaction-bound store. Inside it, LockKeys
// takes transaction-scoped locks on email and phone values (pg_advisory_xact_lock
// on Postgres, FOR UPDATE on a contact_locks row on MySQL) and LockContacts
// row-locks contacts in id order. SQLite has no row locks and relies on the
// single-connection pool configured by core/database.
package contact
