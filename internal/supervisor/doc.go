// FeedEngine - Hybrid Recommendation Engine for Social Feeds
// Copyright 2026 Driftworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/driftworks/feedengine

// Package supervisor builds the Suture supervision tree.
//
// Two child supervisors isolate failures: the engine layer (snapshot
// rebuild service, profile updater) and the API layer (HTTP server). A
// crashing rebuild loop restarts under backoff without interrupting
// request serving, which continues from the last published snapshot.
// Supervisor events are logged via sutureslog through the zerolog slog
// bridge.
package supervisor
