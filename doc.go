// evds: a client for the Turkish central bank's EVDS statistical service.
//
// The service exposes macroeconomic time series behind five CSV endpoints:
// categories, data groups, per-group series listings, series data, and
// data-group data. This package fetches and normalizes all five.
//
// Instructions:
//
//  1. Build a [Client], either from the environment ([New], reads EVDS_KEY)
//     or from an explicit [Config] ([NewWithConfig]).
//
//  2. Metadata: [Client.Categories], [Client.Groups] and [Client.AllSeries]
//     fetch the catalog on first use and keep it in process memory.
//     [Client.Search] runs keyword search over it; [Client.ShowSeriesNames]
//     and [Client.ShowGroupInfo] are display helpers.
//
//  3. Data: [Client.GetSeriesData] and [Client.GetGroupData] download
//     observations into a [Table] — housekeeping columns dropped, the date
//     column parsed per its detected layout (see package evds/period), rows
//     with no values removed. Adjust with [WithDateRange], [WithFrequency],
//     [WithAggregation], [WithKeepEmptyRows].
//
// Raw data retrieval works without the catalog; the catalog only feeds
// search and display.
package evds
