// Package commands defines the banksync CLI.
//
// Commands
//
//   - status        Print the session state
//   - login         Assign a credential
//   - logout        Forget the credential and the persisted hint
//   - refresh       Renew the credential now
//   - shares        List shares
//   - transactions  List the transactions of a share
//   - post          Post a transaction
//   - stocks        List stocks
//   - history       Print the price history of a stock
//   - buy           Buy a stock
//
// The root command loads the configuration from the environment, applies
// flag overrides and builds the application before any subcommand runs.
package commands
