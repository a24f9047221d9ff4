package sync_constants

import "time"

// Meeting code format shown to users. Lookups are case-insensitive.
const MeetingCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const MeetingCodeLength = 6

// A meeting outlives its last lookup by at most this much.
const MeetingTTL = 24 * time.Hour

// Playback reconciliation for non-host clients.
const DriftTolerance = 2 * time.Second

// Minimum gap between periodic playback writes while the host is playing.
// Explicit play/pause/seek actions ignore this window.
const SyncInterval = 5 * time.Second

// Author identity used for join/leave notices in the chat transcript.
const SystemUserID = "00000000-0000-0000-0000-000000000000"
const SystemUserName = "System"
