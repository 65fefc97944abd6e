// Package pipelines wires compgraph's operator library into the four reference graphs
// that exercise it end to end: word counting, inverted-index TF-IDF, pointwise mutual
// information, and average traffic speed by weekday/hour.
package pipelines

import (
	"github.com/compgraph/compgraph/pkg/compgraph"
)

// WordCount builds a graph that lowercases and splits text in textCol, then counts
// occurrences of each distinct token into countCol, ordered ascending by (count, token).
func WordCount(source *compgraph.Graph, textCol, countCol string) *compgraph.Graph {
	return source.
		Map(compgraph.FilterPunctuation(textCol)).
		Map(compgraph.LowerCase(textCol)).
		Map(compgraph.Split(textCol)).
		Sort([]string{textCol}).
		Reduce(compgraph.Count(countCol), []string{textCol}).
		Sort([]string{countCol, textCol})
}

// InvertedIndex builds a graph that computes, for every (document, word) pair the
// corpus contains, a TF-IDF score in resultCol, keeping the top 3 documents per word.
func InvertedIndex(source *compgraph.Graph, docCol, textCol, resultCol string) *compgraph.Graph {
	splitWord := source.
		Map(compgraph.FilterPunctuation(textCol)).
		Map(compgraph.LowerCase(textCol)).
		Map(compgraph.Split(textCol))

	countDocs := source.Reduce(compgraph.Count("docs_count"), nil)

	countIDF := splitWord.Sort([]string{docCol, textCol}).
		Reduce(compgraph.FirstReducer(), []string{docCol, textCol}).
		Sort([]string{textCol}).
		Reduce(compgraph.Count("docs_with_word"), []string{textCol}).
		Join(compgraph.InnerJoiner(), countDocs, nil).
		Map(compgraph.IDF([2]string{"docs_count", "docs_with_word"}, "idf"))

	tf := splitWord.Sort([]string{docCol}).
		Reduce(compgraph.TermFrequency(textCol, "tf"), []string{docCol})

	return tf.Sort([]string{textCol}).
		Join(compgraph.InnerJoiner(), countIDF.Sort([]string{textCol}), []string{textCol}).
		Map(compgraph.Product([]string{"tf", "idf"}, resultCol)).
		Sort([]string{textCol}).
		Reduce(compgraph.TopN(resultCol, 3), []string{textCol}).
		Map(compgraph.Project([]string{docCol, textCol, resultCol}))
}

// PMI builds a graph that gives, for every document, its top 10 words ranked by
// pointwise mutual information against the corpus as a whole.
func PMI(source *compgraph.Graph, docCol, textCol, resultCol string) *compgraph.Graph {
	longWord := compgraph.FilterFn(func(row compgraph.Row) bool {
		v, ok := row[textCol]
		if !ok {
			return false
		}
		s, ok := v.AsString()
		return ok && len(s) > 4
	})
	frequentEnough := compgraph.FilterFn(func(row compgraph.Row) bool {
		v, ok := row["word_in_doc_count"]
		if !ok {
			return false
		}
		n, ok := v.AsInt()
		return ok && n >= 2
	})

	splitWord := source.
		Map(compgraph.FilterPunctuation(textCol)).
		Map(compgraph.LowerCase(textCol)).
		Map(compgraph.Split(textCol)).
		Map(longWord).
		Sort([]string{docCol, textCol}).
		Reduce(compgraph.Count("word_in_doc_count"), []string{docCol, textCol}).
		Map(frequentEnough).
		Map(compgraph.Reveal("word_in_doc_count"))

	freqInDoc := splitWord.Sort([]string{docCol}).
		Reduce(compgraph.TermFrequency(textCol, "tf"), []string{docCol})

	freqInAll := splitWord.
		Reduce(compgraph.TermFrequency(textCol, "freq_in_all"), nil).
		Map(compgraph.Project([]string{textCol, "freq_in_all"}))

	merged := freqInDoc.Sort([]string{textCol}).
		Join(compgraph.InnerJoiner(), freqInAll.Sort([]string{textCol}), []string{textCol}).
		Map(compgraph.PMI([2]string{"tf", "freq_in_all"}, resultCol))

	return merged.Sort([]string{docCol}).
		Map(compgraph.Project([]string{docCol, textCol, resultCol})).
		Sort([]string{docCol}).
		Reduce(compgraph.TopN(resultCol, 10), []string{docCol}).
		Map(compgraph.Inverse(resultCol)).
		Sort([]string{docCol, resultCol}).
		Map(compgraph.Inverse(resultCol))
}

// TrafficSpeed builds a graph that joins trip durations (from timeSource) with edge
// lengths (from lengthSource) to compute average speed per weekday and hour.
func TrafficSpeed(timeSource, lengthSource *compgraph.Graph, edgeCol, startTimeCol, leaveTimeCol, startCoordCol, endCoordCol, weekdayCol, hourCol, speedCol string) *compgraph.Graph {
	trips := timeSource.
		Map(compgraph.GetDuration(startTimeCol, leaveTimeCol, "duration")).
		Map(compgraph.GetWeekdayAndHour(startTimeCol, weekdayCol, hourCol)).
		Map(compgraph.Project([]string{edgeCol, "duration", weekdayCol, hourCol}))

	lengths := lengthSource.
		Map(compgraph.GetHaversineDist(startCoordCol, endCoordCol, "distance")).
		Map(compgraph.Project([]string{edgeCol, "distance"}))

	merged := trips.Sort([]string{edgeCol}).
		Join(compgraph.InnerJoiner(), lengths.Sort([]string{edgeCol}), []string{edgeCol}).
		Sort([]string{weekdayCol, hourCol})

	totalDist := merged.Reduce(compgraph.Sum("distance"), []string{weekdayCol, hourCol})
	totalDuration := merged.Reduce(compgraph.Sum("duration"), []string{weekdayCol, hourCol})

	return totalDist.Sort([]string{weekdayCol, hourCol}).
		Join(compgraph.InnerJoiner(), totalDuration.Sort([]string{weekdayCol, hourCol}), []string{weekdayCol, hourCol}).
		Map(compgraph.GetAverageSpeed("distance", "duration", speedCol)).
		Map(compgraph.Project([]string{weekdayCol, hourCol, speedCol}))
}
