/*
 * Copyright (C) 2023 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const minute = int64(60_000)

func TestFirstReadingEmitsNoStat(t *testing.T) {
	engine := NewEngine(5*time.Minute, 30*time.Second)
	stats := engine.Add("s1", 0, 100)
	require.Empty(t, stats)
}

func TestStatExcludesTriggeringReading(t *testing.T) {
	engine := NewEngine(5*time.Minute, 30*time.Second)
	require.Empty(t, engine.Add("s1", 0, 100))
	stats := engine.Add("s1", minute, 400)
	require.Len(t, stats, 1)
	// only the prior reading contributes to the window ending here
	require.Equal(t, minute, stats[0].WindowEndMs)
	require.Equal(t, 100.0, stats[0].Mean)
	require.Equal(t, 0.0, stats[0].Std)
	require.Equal(t, 1, stats[0].Count)
}

func TestSlidingEviction(t *testing.T) {
	engine := NewEngine(2*time.Minute, 30*time.Second)
	require.Empty(t, engine.Add("s1", 0, 10))
	engine.Add("s1", minute, 20)
	engine.Add("s1", 2*minute, 30)
	// window [1min, 3min): the reading at t=0 must be gone
	stats := engine.Add("s1", 3*minute, 40)
	require.Len(t, stats, 1)
	require.Equal(t, 25.0, stats[0].Mean)
	require.Equal(t, 2, stats[0].Count)
}

func TestStatsPerSensorAreIndependent(t *testing.T) {
	engine := NewEngine(5*time.Minute, 30*time.Second)
	engine.Add("s1", 0, 100)
	engine.Add("s2", 0, 500)
	s1 := engine.Add("s1", minute, 100)
	s2 := engine.Add("s2", minute, 500)
	require.Len(t, s1, 1)
	require.Len(t, s2, 1)
	require.Equal(t, 100.0, s1[0].Mean)
	require.Equal(t, 500.0, s2[0].Mean)
}

func TestNoStatWhileInsideHop(t *testing.T) {
	engine := NewEngine(10*time.Minute, 5*time.Minute)
	require.Empty(t, engine.Add("s1", 0, 100))
	// next hop boundary is at 5min; a reading before it triggers nothing
	require.Empty(t, engine.Add("s1", 2*minute, 100))
	stats := engine.Add("s1", 5*minute, 100)
	require.Len(t, stats, 1)
	require.Equal(t, 2, stats[0].Count)
}

func TestVarianceComputation(t *testing.T) {
	engine := NewEngine(10*time.Minute, 30*time.Second)
	engine.Add("s1", 0, 2)
	engine.Add("s1", minute, 4)
	engine.Add("s1", 2*minute, 4)
	engine.Add("s1", 3*minute, 6)
	stats := engine.Add("s1", 4*minute, 100)
	require.Len(t, stats, 1)
	require.Equal(t, 4.0, stats[0].Mean)
	require.InDelta(t, 1.4142, stats[0].Std, 0.001)
}

func TestZScoreEpsilonFloor(t *testing.T) {
	// zero variance must not divide by zero
	z := ZScore(400, 100, 0, 1e-9)
	require.InDelta(t, 3e11, z, 1e3)

	z = ZScore(110, 100, 5, 1e-9)
	require.Equal(t, 2.0, z)

	// negative deviations keep their sign
	z = ZScore(90, 100, 5, 1e-9)
	require.Equal(t, -2.0, z)
}

func TestSensorsListsTrackedSensors(t *testing.T) {
	engine := NewEngine(5*time.Minute, 30*time.Second)
	engine.Add("s1", 0, 1)
	engine.Add("s2", 0, 2)
	require.ElementsMatch(t, []string{"s1", "s2"}, engine.Sensors())
}
