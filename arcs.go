package main

// arcCatalog is the fixed, ordered journey. Each arc is gated by one question.
var arcCatalog = [TotalArcs]ArcDefinition{
	{
		ID:       1,
		Title:    "The Spark",
		Question: "What makes a blockchain ledger hard to rewrite?",
		Options: []string{
			"A central administrator approves every change",
			"Each block commits to the hash of the block before it",
			"Blocks are stored on a single secure server",
			"Transactions are encrypted with a shared password",
		},
		Correct: 1,
	},
	{
		ID:       2,
		Title:    "The Keys",
		Question: "What must never leave your possession to keep your funds safe?",
		Options: []string{
			"Your public address",
			"Your transaction history",
			"Your private key or seed phrase",
			"Your block explorer bookmark",
		},
		Correct: 2,
	},
	{
		ID:       3,
		Title:    "The Consensus",
		Question: "What problem does a consensus mechanism solve?",
		Options: []string{
			"Agreeing on one history without a trusted referee",
			"Making transactions free",
			"Hiding balances from everyone",
			"Speeding up internet connections",
		},
		Correct: 0,
	},
	{
		ID:       4,
		Title:    "The Contracts",
		Question: "What is a smart contract?",
		Options: []string{
			"A legal document signed online",
			"A wallet with two owners",
			"An exchange listing agreement",
			"Code deployed on-chain that executes when called",
		},
		Correct: 3,
	},
	{
		ID:       5,
		Title:    "The Light",
		Question: "What does a Luminari do with what they have learned?",
		Options: []string{
			"Keeps it hidden",
			"Shares it and guides others",
			"Sells it to the highest bidder",
			"Forgets it after the journey",
		},
		Correct: 1,
	},
}

func arcDefinition(arc int) (ArcDefinition, bool) {
	if !validArc(arc) {
		return ArcDefinition{}, false
	}
	return arcCatalog[arc-1], true
}
