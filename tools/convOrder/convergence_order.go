package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
)

var (
	csvFile string
)

// Computes the observed convergence order of a mesh refinement study. Rows
// sharing a title form one study; each row holds the cell count and the
// error norms of one run, coarse to fine:
//
//	Title, Cells, CFL, rhoRMS, rhouRMS, etRMS
func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "file containing entries of a mesh refinement study")
	flag.Parse()
	csvFile = *csvFilePtr
	if len(csvFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", csvFile)
	studies := readCSV(csvFile)
	titles := make([]string, 0, len(studies))
	for title := range studies {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	for _, title := range titles {
		rs := studies[title]
		fmt.Printf("Title = %s, CFL = %5.2f\n", rs.title, rs.CFL)
		fmt.Printf("%8s %12s %12s %12s %8s %8s %8s\n",
			"cells", "rhoRMS", "rhouRMS", "etRMS", "pRho", "pRhoU", "pEt")
		for i := range rs.cells {
			fmt.Printf("%8d %12.5e %12.5e %12.5e",
				rs.cells[i], rs.rhoRMS[i], rs.rhouRMS[i], rs.etRMS[i])
			if i > 0 {
				r := math.Log(float64(rs.cells[i]) / float64(rs.cells[i-1]))
				fmt.Printf(" %8.3f %8.3f %8.3f",
					math.Log(rs.rhoRMS[i-1]/rs.rhoRMS[i])/r,
					math.Log(rs.rhouRMS[i-1]/rs.rhouRMS[i])/r,
					math.Log(rs.etRMS[i-1]/rs.etRMS[i])/r)
			}
			fmt.Printf("\n")
		}
	}
}

type RefinementStudy struct {
	title                  string
	CFL                    float64
	cells                  []int
	rhoRMS, rhouRMS, etRMS []float64
}

func NewRefinementStudy(title string, CFL float64) *RefinementStudy {
	return &RefinementStudy{
		title: title,
		CFL:   CFL,
	}
}

func (rs *RefinementStudy) Add(cells int, rhoRMS, rhouRMS, etRMS float64) {
	rs.cells = append(rs.cells, cells)
	rs.rhoRMS = append(rs.rhoRMS, rhoRMS)
	rs.rhouRMS = append(rs.rhouRMS, rhouRMS)
	rs.etRMS = append(rs.etRMS, etRMS)
}

func readCSV(csvFile string) (studies map[string]*RefinementStudy) {
	var (
		records                [][]string
		err                    error
		f                      *os.File
		ok                     bool
		rs                     *RefinementStudy
		cfl                    float64
		rhoRMS, rhouRMS, etRMS float64
	)
	studies = make(map[string]*RefinementStudy)
	if f, err = os.Open(csvFile); err != nil {
		panic(err)
	}
	r := csv.NewReader(bufio.NewReader(f))
	if records, err = r.ReadAll(); err != nil {
		panic(err)
	}
	for i, rec := range records {
		if i == 0 {
			continue
		}
		title, cellstxt, cfltxt := rec[0], rec[1], rec[2]
		cells, _ := strconv.Atoi(cellstxt)
		_, _ = fmt.Sscanf(cfltxt, "%f", &cfl)
		if rs, ok = studies[title]; !ok {
			rs = NewRefinementStudy(title, cfl)
			studies[title] = rs
		}
		_, _ = fmt.Sscanf(rec[3], "%f", &rhoRMS)
		_, _ = fmt.Sscanf(rec[4], "%f", &rhouRMS)
		_, _ = fmt.Sscanf(rec[5], "%f", &etRMS)
		rs.Add(cells, rhoRMS, rhouRMS, etRMS)
	}
	return
}
