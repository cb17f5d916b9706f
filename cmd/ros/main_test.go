package main

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/couchcryptid/vesta-spread-service/internal/vesta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Table(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-wind", "20", "-moisture", "10", "-df", "8"}, &out, io.Discard))

	text := out.String()
	assert.Contains(t, text, "rate of spread")
	assert.Contains(t, text, "564.831")
	assert.Contains(t, text, "phase2")
}

func TestRun_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-wind", "20", "-moisture", "10", "-df", "8", "-wet", "-json"}, &out, io.Discard))

	var got struct {
		Inputs vesta.Point  `json:"inputs"`
		Result vesta.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.True(t, got.Inputs.WetForest)
	assert.InDelta(t, 100.0, got.Inputs.DroughtIndex, 0)
	assert.InDelta(t, 0.9505640045705968, got.Result.FuelAvailability, 1e-12)
}

func TestRun_BadFlag(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Error(t, run([]string{"-wind", "fast"}, &out, &errOut))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "invalid value")
	assert.Contains(t, errOut.String(), "-moisture")
}

func TestRun_Help(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, run([]string{"-h"}, &out, &errOut))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Usage of ros")
	assert.Contains(t, errOut.String(), "-wind")
	assert.Contains(t, errOut.String(), "wind reduction factor")
}
