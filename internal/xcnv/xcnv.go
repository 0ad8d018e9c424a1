// Copyright 2023 The TMSi-SAGA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xcnv provides tools to convert Poly5 recordings to EDF, WAV
// and CSV.
package xcnv // import "github.com/Neuro-Mechatronics-Interfaces/TMSi-SAGA/internal/xcnv"
