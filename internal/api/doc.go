// Package api is the HTTP adapter in front of the action dispatcher. It
// decodes the dialogue engine's webhook calls into action requests, renders
// action responses as slot events and messages, and maps internal errors to
// status codes without leaking their details.
package api
