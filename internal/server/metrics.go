package server

import "sync"

// Metrics holds per-instance request counters. The embedding UI reads a
// snapshot for its status line; nothing is exposed on the wire.
type Metrics struct {
	mu sync.Mutex

	requestsTotal    int64
	requestErrors4xx int64
	requestErrors5xx int64

	uploadsTotal     int64
	uploadBytesTotal int64
	textUploadsTotal int64

	downloadsTotal     int64
	downloadBytesTotal int64
	textsServedTotal   int64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	RequestsTotal    int64
	RequestErrors4xx int64
	RequestErrors5xx int64

	UploadsTotal     int64
	UploadBytesTotal int64
	TextUploadsTotal int64

	DownloadsTotal     int64
	DownloadBytesTotal int64
	TextsServedTotal   int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordRequest counts one finished request by status class.
func (m *Metrics) RecordRequest(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestsTotal++
	switch {
	case status >= 500:
		m.requestErrors5xx++
	case status >= 400:
		m.requestErrors4xx++
	}
}

// RecordUpload counts one stored file upload.
func (m *Metrics) RecordUpload(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadsTotal++
	m.uploadBytesTotal += bytes
}

// RecordTextUpload counts one stored text upload.
func (m *Metrics) RecordTextUpload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textUploadsTotal++
}

// RecordDownload counts one completed file download.
func (m *Metrics) RecordDownload(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadsTotal++
	m.downloadBytesTotal += bytes
}

// RecordTextServed counts one text read.
func (m *Metrics) RecordTextServed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textsServedTotal++
}

// Snapshot copies the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		RequestsTotal:      m.requestsTotal,
		RequestErrors4xx:   m.requestErrors4xx,
		RequestErrors5xx:   m.requestErrors5xx,
		UploadsTotal:       m.uploadsTotal,
		UploadBytesTotal:   m.uploadBytesTotal,
		TextUploadsTotal:   m.textUploadsTotal,
		DownloadsTotal:     m.downloadsTotal,
		DownloadBytesTotal: m.downloadBytesTotal,
		TextsServedTotal:   m.textsServedTotal,
	}
}
