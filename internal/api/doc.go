// Package api contains the HTTP handlers, request/response models, and
// error mapping for the task, schedule, and job endpoints.
package api
