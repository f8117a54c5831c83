// Package domain defines the core business entities of the task manager:
// tasks, recurrence rules, work requests, time slots, and the reminder
// offset enumeration. Entities are plain structs with constructors and
// Validate methods; they perform no I/O.
package domain
