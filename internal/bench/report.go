// Copyright 2024 The mindeg Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Result is one (store, workload) measurement.
type Result struct {
	Store    string
	Workload Workload
	Ops      int
	Latency  time.Duration // average per operation
}

// WriteCSV writes results as store,workload,ops,ns_per_op rows with a
// header line.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"store", "workload", "ops", "ns_per_op"}); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Store,
			string(r.Workload),
			strconv.Itoa(r.Ops),
			strconv.FormatInt(r.Latency.Nanoseconds(), 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderChart renders results as a grouped bar chart of per-operation
// latency and writes it to path (format chosen by extension, e.g. .png).
func RenderChart(path string, results []Result) error {
	stores, workloads := axes(results)
	if len(stores) == 0 {
		return fmt.Errorf("bench: no results to plot")
	}

	p := plot.New()
	p.Title.Text = "Ordered store latency"
	p.Y.Label.Text = "ns/op"

	width := vg.Points(18)
	for i, store := range stores {
		values := make(plotter.Values, len(workloads))
		for j, w := range workloads {
			for _, r := range results {
				if r.Store == store && r.Workload == w {
					values[j] = float64(r.Latency.Nanoseconds())
				}
			}
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return fmt.Errorf("bench: bar chart for %s: %w", store, err)
		}
		bars.LineStyle.Width = 0
		bars.Color = plotutil.Color(i)
		bars.Offset = width * vg.Length(i-len(stores)/2)
		p.Add(bars)
		p.Legend.Add(store, bars)
	}
	p.Legend.Top = true

	names := make([]string, len(workloads))
	for i, w := range workloads {
		names[i] = string(w)
	}
	p.NominalX(names...)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("bench: save chart: %w", err)
	}
	return nil
}

// axes returns the distinct stores and workloads present in results, in
// first-seen order.
func axes(results []Result) (stores []string, workloads []Workload) {
	seenStore := map[string]bool{}
	seenWorkload := map[Workload]bool{}
	for _, r := range results {
		if !seenStore[r.Store] {
			seenStore[r.Store] = true
			stores = append(stores, r.Store)
		}
		if !seenWorkload[r.Workload] {
			seenWorkload[r.Workload] = true
			workloads = append(workloads, r.Workload)
		}
	}
	return stores, workloads
}
