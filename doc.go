// Package main provides the entry point for the lost-and-found admin application.
// It runs a web server using the Fiber framework through which staff record
// found items, track their status lifecycle, and manage user accounts. User
// accounts are synchronized from Active Directory groups on a daily schedule,
// with group-to-role mappings maintained by administrators. The application
// uses gorm for data persistence and keeps a full audit trail of all activity.
package main
