// Package health reports server health for the cyberark://health resource.
//
// Checkers cover the token cache state and identity endpoint reachability;
// an Aggregator runs them and folds the results into an overall status.
package health
