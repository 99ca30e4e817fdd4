// Package pipeline runs the crawl, save and load stages as a sequence of steps.
//
// Each stage is a Step that receives the shared Run and records its output
// there: the crawl step fills Restaurants and CrawlStats, the save step
// writes the interchange file and the load step rebuilds the database.
// The pipeline checks for cancellation between steps and stops on the
// first failure unless configured otherwise.
package pipeline
