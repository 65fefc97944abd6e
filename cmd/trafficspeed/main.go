// Command trafficspeed computes average traffic speed by weekday and hour from two
// JSON-lines input files: one carrying trip enter/leave times, the other edge start/end
// coordinates.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/compgraph/compgraph/internal/cliutil"
	"github.com/compgraph/compgraph/pipelines"
)

func main() {
	out := flag.String("out", "", "output file (JSON array); defaults to stdout")
	edgeCol := flag.String("edge-col", "edge_id", "name of the shared edge identifier field")
	startTimeCol := flag.String("enter-col", "enter_time", "name of the trip enter-time field")
	leaveTimeCol := flag.String("leave-col", "leave_time", "name of the trip leave-time field")
	startCoordCol := flag.String("start-coord-col", "start", "name of the edge start-coordinate field")
	endCoordCol := flag.String("end-coord-col", "end", "name of the edge end-coordinate field")
	weekdayCol := flag.String("weekday-col", "weekday", "name of the output weekday field")
	hourCol := flag.String("hour-col", "hour", "name of the output hour field")
	speedCol := flag.String("speed-col", "speed", "name of the output speed field")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: trafficspeed [flags] <trips.jsonl> <edges.jsonl>")
		os.Exit(2)
	}

	timeSource := cliutil.OpenJSONLines(flag.Arg(0))
	lengthSource := cliutil.OpenJSONLines(flag.Arg(1))
	graph := pipelines.TrafficSpeed(timeSource, lengthSource, *edgeCol, *startTimeCol, *leaveTimeCol,
		*startCoordCol, *endCoordCol, *weekdayCol, *hourCol, *speedCol)

	if err := cliutil.RunToJSONArray(graph, *out); err != nil {
		fmt.Fprintln(os.Stderr, "trafficspeed:", err)
		os.Exit(1)
	}
}
