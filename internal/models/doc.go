// Package models defines the data model for the myFlix client.
//
// Every entity is owned by the remote backend; the client only holds
// cached, possibly-stale copies. JSON tags follow the backend's wire
// casing: Mongo-style "_id" plus capitalized field names on records,
// lowercase field names on request payloads.
package models
