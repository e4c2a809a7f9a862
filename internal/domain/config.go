package domain

// DefaultKeyPrefix namespaces every key facetdex writes to the KV store.
const DefaultKeyPrefix = "facetdex:"
