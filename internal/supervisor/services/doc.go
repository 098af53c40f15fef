// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

// Package services adapts long-running components to suture.Service.
//
// Each wrapper depends on a small interface rather than the concrete
// component (HTTPServer, ContextHub, EventBusRunner, Trainer), so the
// wrappers are tested with hand-written doubles.
package services
