// Cartwise - Personalized Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartwise

/*
Package config loads the service configuration with koanf.

Sources are layered in increasing order of precedence:

 1. Built-in defaults (defaultConfig)
 2. A YAML file: CONFIG_PATH, else config.yaml, config.yml,
    /etc/cartwise/config.yaml or /etc/cartwise/config.yml
 3. Environment variables, through an explicit name mapping

Only mapped environment variables are read. The most common ones:

	CATALOG_URL              catalog.url
	CATALOG_PATH             catalog.path
	HTTP_PORT                server.port (default 3860)
	LOG_LEVEL                logging.level
	RECOMMEND_EPOCHS         recommend.training.epochs
	RECOMMEND_HIDDEN_UNITS   recommend.training.hidden_units (comma-separated)
	RECOMMEND_USERS_PATH     recommend.users_path
	RECOMMEND_RETRAIN_INTERVAL recommend.retrain_interval
	CORS_ORIGINS             security.cors_origins (comma-separated)

Load validates the merged result. At least one catalog source (url or
path) must be configured, and scheduled training requires users_path.

Example YAML:

	catalog:
	  url: https://shop.example.com/api/products
	  timeout: 5s
	recommend:
	  aggregation: mean
	  users_path: /data/users.json
	  retrain_interval: 6h
	  training:
	    epochs: 50
*/
package config
