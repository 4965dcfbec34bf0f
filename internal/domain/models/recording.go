// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"strings"
	"time"
)

// RecordingStatus is the local download state of a recording file.
type RecordingStatus string

const (
	RecordingStatusPending    RecordingStatus = "pending"
	RecordingStatusDownloaded RecordingStatus = "downloaded"
)

// Recording is one cloud recording file of a meeting, keyed by the Zoom file id.
type Recording struct {
	ID             int64           `json:"id" db:"id"`
	MeetingID      string          `json:"meeting_id" db:"meeting_id"`
	RecordingID    string          `json:"recording_id" db:"recording_id"`
	RecordingType  *string         `json:"recording_type" db:"recording_type"`
	FileSize       *int64          `json:"file_size" db:"file_size"`
	FileType       *string         `json:"file_type" db:"file_type"`
	DownloadURL    *string         `json:"download_url" db:"download_url"`
	PlayURL        *string         `json:"play_url" db:"play_url"`
	RecordingStart *time.Time      `json:"recording_start" db:"recording_start"`
	RecordingEnd   *time.Time      `json:"recording_end" db:"recording_end"`
	FilePath       *string         `json:"file_path" db:"file_path"`
	Status         RecordingStatus `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// Downloadable reports whether there is a URL to fetch the file from.
func (r *Recording) Downloadable() bool {
	return r.DownloadURL != nil && *r.DownloadURL != ""
}

// RecordingPatch names the recording fields a sync may set. Status and file
// path are owned by the download flow and never patched.
type RecordingPatch struct {
	MeetingID      string
	RecordingID    string
	RecordingType  *string
	FileSize       *int64
	FileType       *string
	DownloadURL    *string
	PlayURL        *string
	RecordingStart *time.Time
	RecordingEnd   *time.Time
}

// Apply merges the patch onto the recording.
func (p RecordingPatch) Apply(r *Recording) {
	if p.RecordingType != nil {
		r.RecordingType = p.RecordingType
	}
	if p.FileSize != nil {
		r.FileSize = p.FileSize
	}
	if p.FileType != nil {
		r.FileType = p.FileType
	}
	if p.DownloadURL != nil {
		r.DownloadURL = p.DownloadURL
	}
	if p.PlayURL != nil {
		r.PlayURL = p.PlayURL
	}
	if p.RecordingStart != nil {
		r.RecordingStart = p.RecordingStart
	}
	if p.RecordingEnd != nil {
		r.RecordingEnd = p.RecordingEnd
	}
	if r.Status == "" {
		r.Status = RecordingStatusPending
	}
}

// DefaultRecordingExtension is used for file types without a known mapping.
const DefaultRecordingExtension = "bin"

var recordingExtensions = map[string]string{
	"MP4":        "mp4",
	"M4A":        "m4a",
	"TRANSCRIPT": "vtt",
	"CC":         "vtt",
	"CHAT":       "txt",
	"CSV":        "csv",
	"TIMELINE":   "json",
	"SUMMARY":    "json",
}

// RecordingExtension maps a Zoom file type to the extension used on disk.
func RecordingExtension(fileType string) string {
	if ext, ok := recordingExtensions[strings.ToUpper(strings.TrimSpace(fileType))]; ok {
		return ext
	}
	return DefaultRecordingExtension
}
