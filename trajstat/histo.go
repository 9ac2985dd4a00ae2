/*
 * histo.go, part of godcd
 *
 * Copyright 2021 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package trajstat

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rmera/godcd/dcd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Histogram counts values into the bins delimited by its dividers.
//Values outside the dividers are ignored.
type Histogram struct {
	normalized bool
	total      int
	dividers   []float64
	histo      []float64
}

//NewHistogram returns a histogram with the given dividers, filled with rawdata,
//which can be nil. rawdata is sorted in place.
func NewHistogram(dividers []float64, rawdata []float64) (*Histogram, error) {
	if len(dividers) < 2 || !sort.Float64sAreSorted(dividers) {
		return nil, fmt.Errorf("trajstat: at least 2 dividers, in increasing order, are needed")
	}
	h := &Histogram{dividers: append([]float64(nil), dividers...)}
	h.histo = make([]float64, len(dividers)-1)
	if rawdata != nil {
		h.ReHisto(rawdata)
	}
	return h, nil
}

//FrameHistogram returns the histogram of the values of f over every frame of r.
func FrameHistogram(r *dcd.Reader, f FrameFunc, dividers []float64) (*Histogram, error) {
	data, err := MapFrames(r, f, make([]float64, 0, r.NFrames()))
	if err != nil {
		return nil, fmt.Errorf("trajstat: %w", err)
	}
	return NewHistogram(dividers, data)
}

//ReHisto replaces the contents of the histogram with the counts from rawdata,
//which is sorted in place.
func (H *Histogram) ReHisto(rawdata []float64) {
	sort.Float64s(rawdata)
	//stat.Histogram panics for values out of range, so we remove them first.
	maxi := sort.SearchFloat64s(rawdata, H.dividers[len(H.dividers)-1])
	mini := sort.SearchFloat64s(rawdata, H.dividers[0])
	rawdata = rawdata[mini:maxi]
	H.total = len(rawdata)
	H.normalized = false
	H.histo = stat.Histogram(nil, H.dividers, rawdata, nil)
}

//AddData adds the given points to the histogram.
func (H *Histogram) AddData(point ...float64) {
	norma := H.normalized
	if norma {
		H.UnNormalize()
	}
	for _, v := range point {
		for j, w := range H.dividers[:len(H.dividers)-1] {
			if w <= v && v < H.dividers[j+1] {
				H.histo[j]++
				H.total++
				break
			}
		}
	}
	if norma {
		H.Normalize()
	}
}

//Total returns the number of points in the histogram.
func (H *Histogram) Total() int {
	return H.total
}

//Normalized returns true if the histogram is normalized.
func (H *Histogram) Normalized() bool {
	return H.normalized
}

//Normalize divides each bin by the total number of points.
func (H *Histogram) Normalize() {
	if H.normalized || H.total <= 0 {
		return
	}
	floats.Scale(1/float64(H.total), H.histo)
	H.normalized = true
}

//UnNormalize reverts Normalize.
func (H *Histogram) UnNormalize() {
	if !H.normalized {
		return
	}
	floats.Scale(float64(H.total), H.histo)
	H.normalized = false
}

//View returns the bins. They are not copied.
func (H *Histogram) View() []float64 {
	return H.histo
}

//Dividers returns a copy of the dividers.
func (H *Histogram) Dividers() []float64 {
	return append([]float64(nil), H.dividers...)
}

//Sum returns the sum of the bins.
func (H *Histogram) Sum() float64 {
	return floats.Sum(H.histo)
}

//String returns a 3-line representation of the histogram.
func (H *Histogram) String() string {
	ret := fmt.Sprintf("Normalized: %v, TotalData: %d\n", H.normalized, H.total)
	d := make([]string, 0, len(H.histo))
	h := make([]string, 0, len(H.histo))
	for i, v := range H.histo {
		d = append(d, fmt.Sprintf("%4.2f-%4.2f", H.dividers[i], H.dividers[i+1]))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return ret + fmt.Sprintf("%s\n%s", strings.Join(d, " "), strings.Join(h, " "))
}

type jsonHistogram struct {
	Normalized bool      `json:"normalized"`
	Total      int       `json:"total"`
	Dividers   []float64 `json:"dividers"`
	Histo      []float64 `json:"histo"`
}

func (H *Histogram) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonHistogram{Normalized: H.normalized, Total: H.total, Dividers: H.dividers, Histo: H.histo})
}

func (H *Histogram) UnmarshalJSON(b []byte) error {
	var a jsonHistogram
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.Histo) != len(a.Dividers)-1 {
		return fmt.Errorf("trajstat: %d bins for %d dividers", len(a.Histo), len(a.Dividers))
	}
	H.normalized, H.total, H.dividers, H.histo = a.Normalized, a.Total, a.Dividers, a.Histo
	return nil
}
