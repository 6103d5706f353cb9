// Package binance provides spot and USDT-futures connectivity for the Binance
// exchange: market data subscriptions multiplexed over one websocket
// connection, a rate-governed REST executor with pair metadata caching, and
// normalized decimal-exact views of balances, positions, orders and trades.
package binance
